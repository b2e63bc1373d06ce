package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"leetcode-companion/config"
	"leetcode-companion/logger"
	"leetcode-companion/metrics"
	"leetcode-companion/models"
)

var ErrGroupCodeExhausted = errors.New("unable to generate unique group code")

const (
	groupCodeAttempts = 5
	refreshFanout     = 8
	isoMillis         = "2006-01-02T15:04:05.000Z"
)

// GenerateGroupCode returns a random code in [10000, 99999].
func GenerateGroupCode() string {
	return strconv.Itoa(10000 + rand.IntN(90000))
}

// GroupService manages group codes, membership and leaderboards.
// Membership is stored only on user records.
type GroupService struct {
	Store    RecordStore
	Tables   config.Tables
	XP       *XPService
	Calendar Calendar
	NewCode  func() string
}

func NewGroupService(store RecordStore, tables config.Tables, xp *XPService, cal Calendar) *GroupService {
	return &GroupService{Store: store, Tables: tables, XP: xp, Calendar: cal, NewCode: GenerateGroupCode}
}

// CreateGroup reserves a fresh code with a conditional insert and moves username into it.
func (s *GroupService) CreateGroup(ctx context.Context, username string) (string, error) {
	log := logger.Log.WithField("username", username)

	groupID := ""
	for attempt := 1; attempt <= groupCodeAttempts; attempt++ {
		candidate := s.NewCode()
		item, err := attributevalue.MarshalMap(models.Group{
			GroupID:   candidate,
			CreatedAt: s.Calendar.Now().UTC().Format(isoMillis),
		})
		if err != nil {
			return "", fmt.Errorf("encode group: %w", err)
		}

		err = s.Store.Put(ctx, s.Tables.Groups, item, &Condition{NotExists: "group_id"})
		if err == nil {
			groupID = candidate
			break
		}
		if !errors.Is(err, ErrConditionFailed) {
			log.WithError(err).Error("[create-group] put failed")
			return "", err
		}
		log.WithField("code", candidate).WithField("attempt", attempt).Warn("[create-group] code collision, retrying")
	}
	if groupID == "" {
		return "", ErrGroupCodeExhausted
	}

	if err := s.Store.Update(ctx, s.Tables.Users, Key("username", username), SetAttr("group_id", S(groupID))); err != nil {
		log.WithError(err).Error("[create-group] membership update failed")
		return "", err
	}
	log.WithField("groupId", groupID).Info("[create-group] group created")
	return groupID, nil
}

// JoinGroup sets username's membership to code. The code is not checked for existence.
func (s *GroupService) JoinGroup(ctx context.Context, username, code string) error {
	if err := s.Store.Update(ctx, s.Tables.Users, Key("username", username), SetAttr("group_id", S(code))); err != nil {
		logger.Log.WithError(err).WithField("username", username).Error("[join-group] update failed")
		return err
	}
	logger.Log.WithField("username", username).WithField("groupId", code).Info("[join-group] joined")
	return nil
}

// LeaveGroup removes the membership attribute.
func (s *GroupService) LeaveGroup(ctx context.Context, username string) error {
	if err := s.Store.Update(ctx, s.Tables.Users, Key("username", username), RemoveAttr("group_id")); err != nil {
		logger.Log.WithError(err).WithField("username", username).Error("[leave-group] update failed")
		return err
	}
	return nil
}

// members looks up a group's users via the index, falling back to a filtered scan.
// ok is false when both paths failed.
func (s *GroupService) members(ctx context.Context, groupID string) ([]Item, bool) {
	eq := Eq{Attr: "group_id", Value: S(groupID)}
	items, err := s.Store.Query(ctx, s.Tables.Users, s.Tables.GroupIndex, eq)
	if err == nil {
		return items, true
	}
	metrics.LeaderboardFallbacks.WithLabelValues("scan").Inc()
	logger.Log.WithError(err).WithField("groupId", groupID).Warn("[get-stats-for-group] index query failed, falling back to scan")

	items, err = s.Store.Scan(ctx, s.Tables.Users, eq)
	if err == nil {
		return items, true
	}
	metrics.LeaderboardFallbacks.WithLabelValues("empty").Inc()
	logger.Log.WithError(err).WithField("groupId", groupID).Error("[get-stats-for-group] scan failed")
	return nil, false
}

// Leaderboard returns the group's rows after a best-effort XP refresh of every member.
// Lookup failures degrade to an empty list.
func (s *GroupService) Leaderboard(ctx context.Context, groupID string) []models.LeaderboardRow {
	items, ok := s.members(ctx, groupID)
	if !ok {
		return []models.LeaderboardRow{}
	}

	if len(items) > 0 && s.XP != nil {
		usernames := make([]string, 0, len(items))
		for _, item := range items {
			usernames = append(usernames, stringAttr(item, "username"))
		}
		outcomes := Settle(ctx, usernames, refreshFanout, func(ctx context.Context, u string) error {
			_, err := s.XP.RefreshXP(ctx, u)
			return err
		})
		if failed := Failed(outcomes); len(failed) > 0 {
			logger.Log.WithField("groupId", groupID).Warnf("[get-stats-for-group] %d of %d XP refreshes failed", len(failed), len(outcomes))
		}

		if refreshed, ok := s.members(ctx, groupID); ok {
			items = refreshed
		}
	}

	rows := make([]models.LeaderboardRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, DecodeUser(item).Row())
	}
	return rows
}

// UserData returns the stored user record in plain form, or an empty object.
func (s *GroupService) UserData(ctx context.Context, username string) map[string]any {
	item, err := s.Store.Get(ctx, s.Tables.Users, Key("username", username))
	if err != nil {
		logger.Log.WithError(err).WithField("username", username).Error("[get-user-data] get failed")
		return map[string]any{}
	}
	out, err := SimplifyItem(item)
	if err != nil {
		logger.Log.WithError(err).WithField("username", username).Error("[get-user-data] decode failed")
		return map[string]any{}
	}
	return out
}
