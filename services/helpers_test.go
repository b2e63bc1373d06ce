package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"leetcode-companion/config"
	"leetcode-companion/models"
)

var testTables = config.Tables{
	Users:      "Users",
	Groups:     "Groups",
	Daily:      "Daily",
	Bounties:   "Bounties",
	GroupIndex: "group_id-index",
}

const testToday = "2024-05-10"

func testCalendar() Calendar {
	return NewCalendar(clockwork.NewFakeClockAt(time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)), time.UTC)
}

func newTestStore() *MemoryStore {
	return NewMemoryStoreFor(testTables)
}

// done builds a completion map marking every name true.
func done(names ...string) map[string]types.AttributeValue {
	m := map[string]types.AttributeValue{}
	for _, n := range names {
		m[n] = Bool(true)
	}
	return m
}

func putDaily(t *testing.T, store RecordStore, date, title, titleSlug string, users map[string]types.AttributeValue) {
	t.Helper()
	item := Item{
		"date":       S(date),
		"title":      S(title),
		"frontendId": S("1"),
		"tags":       &types.AttributeValueMemberSS{Value: []string{"Array", "Hash Table"}},
	}
	if titleSlug != "" {
		item["slug"] = S(titleSlug)
	}
	if users != nil {
		item["users"] = &types.AttributeValueMemberM{Value: users}
	}
	require.NoError(t, store.Put(context.Background(), testTables.Daily, item, nil))
}

func putUser(t *testing.T, store RecordStore, username, groupID string, xp int64) {
	t.Helper()
	item := Item{
		"username": S(username),
		"easy":     N(3),
		"medium":   N(2),
		"hard":     N(1),
		"xp":       N(xp),
	}
	if groupID != "" {
		item["group_id"] = S(groupID)
	}
	require.NoError(t, store.Put(context.Background(), testTables.Users, item, nil))
}

func userXP(t *testing.T, store RecordStore, username string) int64 {
	t.Helper()
	item, err := store.Get(context.Background(), testTables.Users, Key("username", username))
	require.NoError(t, err)
	return DecodeUser(item).XP
}

type stubCatalog struct {
	problem *models.Problem
	err     error
	slugs   []string
}

func (s *stubCatalog) FetchDetails(_ context.Context, slug string) (*models.Problem, error) {
	s.slugs = append(s.slugs, slug)
	return s.problem, s.err
}

// flakyStore fails index queries and, optionally, scans of one table.
type flakyStore struct {
	RecordStore
	failQuery     bool
	failScanTable string
}

func (f *flakyStore) Query(ctx context.Context, table, index string, eq Eq) ([]Item, error) {
	if f.failQuery {
		return nil, errors.New("index unavailable")
	}
	return f.RecordStore.Query(ctx, table, index, eq)
}

func (f *flakyStore) Scan(ctx context.Context, table string, filters ...Eq) ([]Item, error) {
	if table == f.failScanTable {
		return nil, errors.New("scan throttled")
	}
	return f.RecordStore.Scan(ctx, table, filters...)
}
