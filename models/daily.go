package models

// DailyChallenge is one row of the daily table, keyed by ISO date.
type DailyChallenge struct {
	Date       string          `json:"date"`
	Slug       string          `json:"slug"`
	Title      string          `json:"title"`
	FrontendID string          `json:"frontendId"`
	Tags       []string        `json:"tags"`
	Users      map[string]bool `json:"users"`

	// HasUsers is false when the stored record carries no completion map at all.
	HasUsers bool `json:"-"`
}

// CompletedBy reports whether username has a true completion flag on this record.
func (d DailyChallenge) CompletedBy(username string) bool {
	return d.Users[username]
}

// DailyStatus is the answer to get-daily-problem.
type DailyStatus struct {
	DailyComplete bool     `json:"dailyComplete"`
	Streak        int      `json:"streak"`
	TodaysProblem *Problem `json:"todaysProblem"`
	Error         *string  `json:"error"`
}

// CompletionResult is the answer to complete-daily-problem.
type CompletionResult struct {
	Success          bool    `json:"success"`
	XPAwarded        int64   `json:"xpAwarded"`
	NewStreak        int     `json:"newStreak"`
	Error            *string `json:"error"`
	AlreadyCompleted bool    `json:"alreadyCompleted,omitempty"`
}

// XPRefresh is the answer to fix-user-xp / refresh-user-xp.
type XPRefresh struct {
	Success       bool   `json:"success"`
	NewXP         int64  `json:"newXP"`
	CompletedDays int    `json:"completedDays"`
	Error         string `json:"error,omitempty"`
}
