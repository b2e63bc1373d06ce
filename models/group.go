package models

// Group is a leaderboard cohort keyed by a 5-digit code.
// Membership lives on the user records, never on the group.
type Group struct {
	GroupID   string `json:"group_id" dynamodbav:"group_id"`
	CreatedAt string `json:"created_at" dynamodbav:"created_at"`
}
