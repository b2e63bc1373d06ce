package models

// Bounty is a time-boxed target with per-user progress counters.
// Start and expiry are epoch seconds.
type Bounty struct {
	BountyID    string           `json:"bountyId"`
	Count       int64            `json:"count"`
	ExpiryDate  int64            `json:"expirydate"`
	StartDate   int64            `json:"startdate"`
	XP          int64            `json:"xp"`
	Description string           `json:"description,omitempty"`
	Difficulty  string           `json:"difficulty,omitempty"`
	Users       map[string]int64 `json:"users"`
	Name        string           `json:"name,omitempty"`
	Tags        []string         `json:"tags"`
	Title       string           `json:"title,omitempty"`
	Type        string           `json:"type,omitempty"`

	// Per-user annotation, filled only when a username is supplied.
	UserProgress    *int64   `json:"userProgress,omitempty"`
	ProgressPercent *float64 `json:"progressPercent,omitempty"`
	IsExpired       *bool    `json:"isExpired,omitempty"`
	IsActive        *bool    `json:"isActive,omitempty"`
	TimeRemaining   *int64   `json:"timeRemaining,omitempty"`
	DaysRemaining   *int64   `json:"daysRemaining,omitempty"`
}
