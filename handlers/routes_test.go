package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leetcode-companion/config"
	"leetcode-companion/models"
	"leetcode-companion/services"
)

var tables = config.Tables{
	Users:      "Users",
	Groups:     "Groups",
	Daily:      "Daily",
	Bounties:   "Bounties",
	GroupIndex: "group_id-index",
}

type stubPicker struct {
	problem *models.Problem
	err     error
}

func (s stubPicker) FetchRandomByDifficulty(context.Context, string) (*models.Problem, error) {
	return s.problem, s.err
}

type stubState struct {
	step     string
	user     *models.SessionUser
	daily    *models.SessionDaily
	cleared  bool
	triggers int
}

func (s *stubState) UpdateState(step string, user *models.SessionUser, daily *models.SessionDaily) {
	s.step, s.user, s.daily = step, user, daily
}

func (s *stubState) ClearState() { s.cleared = true }

func (s *stubState) Trigger(context.Context) error {
	s.triggers++
	return nil
}

type testApp struct {
	app    *fiber.App
	store  *services.MemoryStore
	state  *stubState
	opened []string
	picker *stubPicker
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := services.NewMemoryStoreFor(tables)
	cal := services.NewCalendar(clockwork.NewFakeClockAt(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)), time.UTC)
	xp := services.NewXPService(store, tables)

	ta := &testApp{
		app:    fiber.New(),
		store:  store,
		state:  &stubState{},
		picker: &stubPicker{},
	}
	SetupRoutes(ta.app, Deps{
		Validator: services.NewUsernameValidator("", ""),
		Groups:    services.NewGroupService(store, tables, xp, cal),
		Daily:     services.NewDailyService(store, tables, nil, xp, cal),
		XP:        xp,
		Bounties:  services.NewBountyService(store, tables, cal),
		Catalog:   ta.picker,
		AppState:  ta.state,
		OpenURL: func(u string) error {
			ta.opened = append(ta.opened, u)
			return nil
		},
		Gatherer: prometheus.NewRegistry(),
	})
	return ta
}

func (ta *testApp) call(t *testing.T, endpoint, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/"+endpoint, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	ta := newTestApp(t)
	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := ta.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestGroupLifecycle(t *testing.T) {
	ta := newTestApp(t)

	status, raw := ta.call(t, "create-group", `{"username":"alice"}`)
	require.Equal(t, http.StatusOK, status)
	groupID := decode[map[string]string](t, raw)["groupId"]
	require.Len(t, groupID, 5)

	status, raw = ta.call(t, "join-group", `{"username":"bob","inviteCode":"`+groupID+`"}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"joined":true,"groupId":"`+groupID+`"}`, string(raw))

	_, raw = ta.call(t, "get-stats-for-group", `{"groupId":"`+groupID+`"}`)
	rows := decode[[]models.LeaderboardRow](t, raw)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].Username)
	assert.Equal(t, "bob", rows[1].Name)

	_, raw = ta.call(t, "leave-group", `{"username":"bob"}`)
	assert.JSONEq(t, `{"left":true}`, string(raw))

	_, raw = ta.call(t, "get-user-data", `{"username":"bob"}`)
	assert.JSONEq(t, `{"username":"bob","xp":0}`, string(raw))

	_, raw = ta.call(t, "get-user-data", `{"username":"nobody"}`)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestDailyEndpoints(t *testing.T) {
	ta := newTestApp(t)

	_, raw := ta.call(t, "get-daily-problem", `{"username":"alice"}`)
	assert.JSONEq(t, `{"dailyComplete":false,"streak":0,"todaysProblem":null,"error":"No daily problems found"}`, string(raw))

	require.NoError(t, ta.store.Put(context.Background(), tables.Daily, services.Item{
		"date":  services.S("2024-05-10"),
		"slug":  services.S("two-sum"),
		"title": services.S("Two Sum"),
	}, nil))

	_, raw = ta.call(t, "complete-daily-problem", `{"username":"alice"}`)
	assert.JSONEq(t, `{"success":true,"xpAwarded":200,"newStreak":1,"error":null}`, string(raw))

	_, raw = ta.call(t, "complete-daily-problem", `{"username":"alice"}`)
	assert.JSONEq(t, `{"success":false,"xpAwarded":0,"newStreak":0,"error":"Daily problem already completed today","alreadyCompleted":true}`, string(raw))

	_, raw = ta.call(t, "get-daily-problem", `{"username":"alice"}`)
	status := decode[models.DailyStatus](t, raw)
	assert.True(t, status.DailyComplete)
	assert.Equal(t, 1, status.Streak)
	require.NotNil(t, status.TodaysProblem)
	assert.Equal(t, "Unknown", status.TodaysProblem.Difficulty)

	for _, endpoint := range []string{"fix-user-xp", "refresh-user-xp"} {
		_, raw = ta.call(t, endpoint, `{"username":"alice"}`)
		assert.JSONEq(t, `{"success":true,"newXP":200,"completedDays":1}`, string(raw), endpoint)
	}
}

func TestBountyEndpoints(t *testing.T) {
	ta := newTestApp(t)
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC).Unix()
	require.NoError(t, ta.store.Put(context.Background(), tables.Bounties, services.Item{
		"bountyId":   services.S("b1"),
		"count":      services.N(10),
		"startdate":  services.N(now - 60),
		"expirydate": services.N(now + 60),
		"users":      &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{}},
	}, nil))

	_, raw := ta.call(t, "update-bounty-progress", `{"username":"alice","bountyId":"b1","progress":7}`)
	assert.JSONEq(t, `{"success":true,"progress":7}`, string(raw))

	_, raw = ta.call(t, "update-bounty-progress", `{"username":"alice","bountyId":"missing","progress":3}`)
	failed := decode[map[string]any](t, raw)
	assert.Equal(t, false, failed["success"])
	assert.Contains(t, failed["error"], "record not found")

	_, raw = ta.call(t, "get-bounties", `{"username":"alice"}`)
	bounties := decode[[]models.Bounty](t, raw)
	require.Len(t, bounties, 1)
	assert.Equal(t, 70.0, *bounties[0].ProgressPercent)
	assert.True(t, *bounties[0].IsActive)

	_, raw = ta.call(t, "get-bounties", ``)
	bounties = decode[[]models.Bounty](t, raw)
	require.Len(t, bounties, 1)
	assert.Nil(t, bounties[0].ProgressPercent)
}

func TestAppStateEndpoints(t *testing.T) {
	ta := newTestApp(t)

	_, raw := ta.call(t, "update-app-state", `{"step":"leaderboard","userData":{"leetUsername":"alice"},"dailyData":{"dailyComplete":false}}`)
	assert.JSONEq(t, `{"success":true}`, string(raw))
	assert.Equal(t, "leaderboard", ta.state.step)
	require.NotNil(t, ta.state.user)
	assert.Equal(t, "alice", ta.state.user.LeetUsername)
	require.NotNil(t, ta.state.daily.DailyComplete)
	assert.False(t, *ta.state.daily.DailyComplete)

	_, raw = ta.call(t, "check-daily-notification", ``)
	assert.JSONEq(t, `{"success":true}`, string(raw))
	assert.Equal(t, 1, ta.state.triggers)

	_, raw = ta.call(t, "clear-app-state", ``)
	assert.JSONEq(t, `{"success":true}`, string(raw))
	assert.True(t, ta.state.cleared)
}

func TestOpenExternalURL(t *testing.T) {
	ta := newTestApp(t)

	status, raw := ta.call(t, "open-external-url", `{"url":"https://leetcode.com/problems/two-sum/"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":true}`, string(raw))
	assert.Equal(t, []string{"https://leetcode.com/problems/two-sum/"}, ta.opened)

	status, _ = ta.call(t, "open-external-url", `{"url":"file:///etc/passwd"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, ta.opened, 1)
}

func TestFetchRandomProblem(t *testing.T) {
	ta := newTestApp(t)

	ta.picker.problem = &models.Problem{Title: "Two Sum", TitleSlug: "two-sum", Difficulty: "Easy"}
	status, raw := ta.call(t, "fetch-random-problem", `{"difficulty":"EASY"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "two-sum", decode[models.Problem](t, raw).TitleSlug)

	ta.picker.err = services.ErrNoEligibleProblems
	status, _ = ta.call(t, "fetch-random-problem", `{"difficulty":"EASY"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestValidateUsernameMock(t *testing.T) {
	ta := newTestApp(t)

	_, raw := ta.call(t, "validate-username", `{"username":"alice"}`)
	assert.JSONEq(t, `{"exists":true,"error":null}`, string(raw))

	_, raw = ta.call(t, "validate-leetcode-username", `{"username":""}`)
	assert.JSONEq(t, `{"exists":false,"error":"Username cannot be empty"}`, string(raw))
}

func TestMalformedBody(t *testing.T) {
	ta := newTestApp(t)
	status, raw := ta.call(t, "get-user-data", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(raw), "invalid request body")
}
