package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosimple/slug"

	"leetcode-companion/config"
	"leetcode-companion/logger"
	"leetcode-companion/models"
)

var ErrNoChallengeToday = errors.New("no daily problem found for today")

const (
	msgNoDailyProblems   = "No daily problems found"
	msgNoChallengeToday  = "No daily problem found for today"
	msgAlreadyCompleted  = "Daily problem already completed today"
	msgDetailUnavailable = "Problem details unavailable"
)

// DailyService resolves today's challenge, completion state and streaks.
// Nothing is cached: every call re-reads the daily table.
type DailyService struct {
	Store    RecordStore
	Tables   config.Tables
	Catalog  ProblemCatalog
	XP       *XPService
	Calendar Calendar
}

func NewDailyService(store RecordStore, tables config.Tables, catalog ProblemCatalog, xp *XPService, cal Calendar) *DailyService {
	return &DailyService{Store: store, Tables: tables, Catalog: catalog, XP: xp, Calendar: cal}
}

func (s *DailyService) loadRecords(ctx context.Context) ([]models.DailyChallenge, int, error) {
	items, err := s.Store.Scan(ctx, s.Tables.Daily)
	if err != nil {
		return nil, 0, fmt.Errorf("scan daily records: %w", err)
	}
	records := make([]models.DailyChallenge, 0, len(items))
	for _, item := range items {
		records = append(records, DecodeDaily(item))
	}
	return SortNewestFirst(records), len(items), nil
}

// Status reports today's problem, the user's completion and streak.
// Failures are reported in the Error field; the call itself never fails.
func (s *DailyService) Status(ctx context.Context, username string) models.DailyStatus {
	log := logger.Log.WithField("username", username)

	records, raw, err := s.loadRecords(ctx)
	if err != nil {
		log.WithError(err).Error("[get-daily-problem] failed")
		return statusError(err.Error())
	}
	if raw == 0 || len(records) == 0 {
		log.Info("[get-daily-problem] no daily problems found")
		return statusError(msgNoDailyProblems)
	}

	if s.XP != nil {
		if _, err := s.XP.RefreshXP(ctx, username); err != nil {
			log.WithError(err).Warn("[get-daily-problem] XP auto-fix failed, continuing")
		}
	}

	today := s.Calendar.Today()
	var todays *models.DailyChallenge
	if records[0].Date == today {
		todays = &records[0]
	}
	log.WithField("latest", records[0].Date).WithField("today", today).Debug("[get-daily-problem] resolved latest record")

	status := models.DailyStatus{
		DailyComplete: todays != nil && todays.CompletedBy(username),
		Streak:        Streak(records, username, today),
	}
	if todays != nil {
		status.TodaysProblem = s.problemFor(ctx, *todays)
	}
	return status
}

// problemFor fetches the full question for a record, synthesizing it from stored fields on failure.
func (s *DailyService) problemFor(ctx context.Context, rec models.DailyChallenge) *models.Problem {
	titleSlug := rec.Slug
	if titleSlug == "" {
		titleSlug = slug.Make(rec.Title)
	}

	if s.Catalog != nil && titleSlug != "" {
		p, err := s.Catalog.FetchDetails(ctx, titleSlug)
		if err == nil {
			return p
		}
		logger.Log.WithError(err).WithField("slug", titleSlug).Warn("[get-daily-problem] detail fetch failed, using stored data")
	}

	tags := make([]models.TopicTag, 0, len(rec.Tags))
	for _, t := range rec.Tags {
		tags = append(tags, models.TopicTag{Name: t})
	}
	return &models.Problem{
		Title:              rec.Title,
		TitleSlug:          titleSlug,
		FrontendQuestionID: rec.FrontendID,
		Difficulty:         models.DifficultyUnknown,
		Content:            msgDetailUnavailable,
		TopicTags:          tags,
	}
}

// TodaysChallenge returns the record dated today, or ErrNoChallengeToday.
func (s *DailyService) TodaysChallenge(ctx context.Context) (*models.DailyChallenge, error) {
	today := s.Calendar.Today()
	items, err := s.Store.Scan(ctx, s.Tables.Daily, Eq{Attr: "date", Value: S(today)})
	if err != nil {
		return nil, fmt.Errorf("scan today's record: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoChallengeToday
	}
	rec := DecodeDaily(items[0])
	return &rec, nil
}

// Complete marks today's challenge done for username and awards XP.
func (s *DailyService) Complete(ctx context.Context, username string) models.CompletionResult {
	log := logger.Log.WithField("username", username)

	rec, err := s.TodaysChallenge(ctx)
	if err != nil {
		log.WithError(err).Error("[complete-daily-problem] failed")
		if errors.Is(err, ErrNoChallengeToday) {
			return completionError(msgNoChallengeToday)
		}
		return completionError(err.Error())
	}

	if rec.CompletedBy(username) {
		log.Info("[complete-daily-problem] already completed today")
		res := completionError(msgAlreadyCompleted)
		res.AlreadyCompleted = true
		return res
	}

	if !rec.HasUsers {
		log.WithField("date", rec.Date).Info("[complete-daily-problem] first completion, creating completion map")
	}
	if err := s.Store.SetMapEntry(ctx, s.Tables.Daily, Key("date", rec.Date), "users", username, Bool(true)); err != nil {
		log.WithError(err).Error("[complete-daily-problem] marking completion failed")
		return completionError(err.Error())
	}
	if err := s.Store.Update(ctx, s.Tables.Users, Key("username", username), AddNumber("xp", XPPerCompletion)); err != nil {
		log.WithError(err).Error("[complete-daily-problem] awarding XP failed")
		return completionError(err.Error())
	}
	log.Info("[complete-daily-problem] awarded daily XP")

	if s.XP != nil {
		if _, err := s.XP.RefreshXP(ctx, username); err != nil {
			log.WithError(err).Warn("[complete-daily-problem] XP refresh failed, continuing")
		}
	}

	streak, err := s.StreakFor(ctx, username)
	if err != nil {
		log.WithError(err).Warn("[complete-daily-problem] streak recompute failed")
	}
	return models.CompletionResult{Success: true, XPAwarded: XPPerCompletion, NewStreak: streak}
}

// StreakFor recomputes the streak for username from the full daily table.
func (s *DailyService) StreakFor(ctx context.Context, username string) (int, error) {
	records, _, err := s.loadRecords(ctx)
	if err != nil {
		return 0, err
	}
	return Streak(records, username, s.Calendar.Today()), nil
}

func statusError(msg string) models.DailyStatus {
	return models.DailyStatus{Error: &msg}
}

func completionError(msg string) models.CompletionResult {
	return models.CompletionResult{Success: false, Error: &msg}
}
