package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"leetcode-companion/config"
	"leetcode-companion/logger"
	"leetcode-companion/metrics"
	"leetcode-companion/models"
)

// XPPerCompletion is the reward for one completed daily challenge.
const XPPerCompletion int64 = 200

// XPService recomputes a user's XP from the daily completion log.
type XPService struct {
	Store  RecordStore
	Tables config.Tables
}

func NewXPService(store RecordStore, tables config.Tables) *XPService {
	return &XPService{Store: store, Tables: tables}
}

// RefreshXP overwrites the stored XP with completions x XPPerCompletion.
// It is a full recompute, so repeated calls converge on the same value.
func (s *XPService) RefreshXP(ctx context.Context, username string) (models.XPRefresh, error) {
	res, err := s.refresh(ctx, username)
	metrics.XPRefreshes.WithLabelValues(metrics.Status(err)).Inc()
	if err != nil {
		logger.Log.WithError(err).WithField("username", username).Error("[refresh-user-xp] failed")
		return models.XPRefresh{Success: false, Error: err.Error()}, err
	}
	logger.Log.WithFields(logrus.Fields{
		"username":      username,
		"xp":            res.NewXP,
		"completedDays": res.CompletedDays,
	}).Info("[refresh-user-xp] XP recomputed")
	return res, nil
}

func (s *XPService) refresh(ctx context.Context, username string) (models.XPRefresh, error) {
	items, err := s.Store.Scan(ctx, s.Tables.Daily)
	if err != nil {
		return models.XPRefresh{}, fmt.Errorf("scan daily records: %w", err)
	}

	records := make([]models.DailyChallenge, 0, len(items))
	for _, item := range items {
		if d := DecodeDaily(item); d.Date != "" {
			records = append(records, d)
		}
	}
	days := CountCompletions(records, username)
	xp := int64(days) * XPPerCompletion

	if err := s.Store.Update(ctx, s.Tables.Users, Key("username", username), SetAttr("xp", N(xp))); err != nil {
		return models.XPRefresh{}, fmt.Errorf("write user xp: %w", err)
	}
	return models.XPRefresh{Success: true, NewXP: xp, CompletedDays: days}, nil
}
