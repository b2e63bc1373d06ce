package services

import (
	"context"
	"fmt"

	"leetcode-companion/config"
	"leetcode-companion/logger"
	"leetcode-companion/models"
)

const secondsPerDay = 24 * 60 * 60

// BountyService lists bounties and stores per-user progress.
type BountyService struct {
	Store    RecordStore
	Tables   config.Tables
	Calendar Calendar
}

func NewBountyService(store RecordStore, tables config.Tables, cal Calendar) *BountyService {
	return &BountyService{Store: store, Tables: tables, Calendar: cal}
}

// ListBounties returns every bounty, annotated with username's progress when username is set.
func (s *BountyService) ListBounties(ctx context.Context, username string) ([]models.Bounty, error) {
	items, err := s.Store.Scan(ctx, s.Tables.Bounties)
	if err != nil {
		logger.Log.WithError(err).Error("[get-bounties] scan failed")
		return nil, fmt.Errorf("scan bounties: %w", err)
	}

	now := s.Calendar.Now().Unix()
	bounties := make([]models.Bounty, 0, len(items))
	for _, item := range items {
		b := DecodeBounty(item)
		if username != "" {
			Annotate(&b, username, now)
		}
		bounties = append(bounties, b)
	}
	logger.Log.WithField("username", username).Debugf("[get-bounties] found %d bounties", len(bounties))
	return bounties, nil
}

// Annotate fills the per-user fields of b as seen at epoch second now.
func Annotate(b *models.Bounty, username string, now int64) {
	progress := b.Users[username]
	percent := ProgressPercent(progress, b.Count)
	expired := now > b.ExpiryDate
	active := now >= b.StartDate && !expired

	b.UserProgress = &progress
	b.ProgressPercent = &percent
	b.IsExpired = &expired
	b.IsActive = &active
	if active {
		remaining := b.ExpiryDate - now
		days := (remaining + secondsPerDay - 1) / secondsPerDay
		b.TimeRemaining = &remaining
		b.DaysRemaining = &days
	}
}

// ProgressPercent is progress/count as a percentage capped at 100.
// A non-positive target is reached by any progress at all.
func ProgressPercent(progress, count int64) float64 {
	if progress <= 0 {
		return 0
	}
	if count <= 0 {
		return 100
	}
	return min(float64(progress)*100/float64(count), 100)
}

// UpdateProgress overwrites username's progress on a bounty. It is not additive and not validated.
func (s *BountyService) UpdateProgress(ctx context.Context, username, bountyID string, progress int64) error {
	err := s.Store.SetMapEntry(ctx, s.Tables.Bounties, Key("bountyId", bountyID), "users", username, N(progress))
	if err != nil {
		logger.Log.WithError(err).WithField("bountyId", bountyID).Error("[update-bounty-progress] update failed")
		return err
	}
	logger.Log.WithField("bountyId", bountyID).WithField("username", username).Infof("[update-bounty-progress] progress set to %d", progress)
	return nil
}
