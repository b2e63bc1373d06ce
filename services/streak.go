package services

import (
	"slices"
	"strings"

	"leetcode-companion/models"
)

// SortNewestFirst drops records without a date and orders the rest by date, newest first.
func SortNewestFirst(records []models.DailyChallenge) []models.DailyChallenge {
	out := make([]models.DailyChallenge, 0, len(records))
	for _, r := range records {
		if r.Date != "" {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b models.DailyChallenge) int {
		return strings.Compare(b.Date, a.Date)
	})
	return out
}

// Streak counts consecutive completed days for username over records sorted newest first.
//
// Today counts only when records[0] is today's record and it is completed. The walk then
// compares records[i] against today minus i days and stops at the first mismatch, so an
// incomplete today still reports the run that ended yesterday.
func Streak(records []models.DailyChallenge, username, today string) int {
	streak := 0
	if len(records) > 0 && records[0].Date == today && records[0].CompletedBy(username) {
		streak = 1
	}
	for i := 1; i < len(records); i++ {
		r := records[i]
		if r.Date != ShiftDate(today, -i) || !r.CompletedBy(username) {
			break
		}
		streak++
	}
	return streak
}

// CountCompletions counts every record, regardless of date, that username completed.
func CountCompletions(records []models.DailyChallenge, username string) int {
	n := 0
	for _, r := range records {
		if r.CompletedBy(username) {
			n++
		}
	}
	return n
}
