package models

import "time"

const (
	StepWelcome     = "welcome"
	StepLeaderboard = "leaderboard"
)

// SessionUser is the part of the shell's user data the backend cares about.
type SessionUser struct {
	LeetUsername string `json:"leetUsername"`
}

// SessionDaily is the part of the shell's daily data the backend cares about.
type SessionDaily struct {
	DailyComplete *bool `json:"dailyComplete"`
}

// AppState is the shell's last reported navigation snapshot.
type AppState struct {
	Step        string        `json:"step"`
	UserData    *SessionUser  `json:"userData"`
	DailyData   *SessionDaily `json:"dailyData"`
	LastUpdated *time.Time    `json:"lastUpdated"`
}

// WelcomeState is the cleared snapshot.
func WelcomeState() AppState {
	return AppState{Step: StepWelcome}
}

// WantsDailyReminder is true on the leaderboard view with a known user whose daily is still open.
func (s AppState) WantsDailyReminder() bool {
	if s.Step != StepLeaderboard {
		return false
	}
	if s.UserData == nil || s.UserData.LeetUsername == "" {
		return false
	}
	return s.DailyData != nil && s.DailyData.DailyComplete != nil && !*s.DailyData.DailyComplete
}
