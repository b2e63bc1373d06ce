package models

// UsernameCheck is the answer to validate-username.
type UsernameCheck struct {
	Exists bool    `json:"exists"`
	Error  *string `json:"error"`
}
