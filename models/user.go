package models

// User is the per-username record in the users table.
// The record is created implicitly by the first write that targets it.
type User struct {
	Username string `json:"username" dynamodbav:"username"`
	GroupID  string `json:"group_id,omitempty" dynamodbav:"group_id,omitempty"`
	Easy     int64  `json:"easy" dynamodbav:"easy"`
	Medium   int64  `json:"medium" dynamodbav:"medium"`
	Hard     int64  `json:"hard" dynamodbav:"hard"`
	Today    int64  `json:"today" dynamodbav:"today"`
	XP       int64  `json:"xp" dynamodbav:"xp"`
}

// LeaderboardRow is one member line of a group leaderboard.
type LeaderboardRow struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Easy     int64  `json:"easy"`
	Medium   int64  `json:"medium"`
	Hard     int64  `json:"hard"`
	Today    int64  `json:"today"`
	XP       int64  `json:"xp"`
}

// Row projects a user onto the leaderboard shape.
func (u User) Row() LeaderboardRow {
	return LeaderboardRow{
		Username: u.Username,
		Name:     u.Username,
		Easy:     u.Easy,
		Medium:   u.Medium,
		Hard:     u.Hard,
		Today:    u.Today,
		XP:       u.XP,
	}
}
