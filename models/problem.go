package models

const (
	DifficultyEasy    = "EASY"
	DifficultyUnknown = "Unknown"
)

type TopicTag struct {
	Name string `json:"name"`
}

// Problem is a question as returned by the catalog service.
type Problem struct {
	Title              string     `json:"title"`
	TitleSlug          string     `json:"titleSlug"`
	FrontendQuestionID string     `json:"frontendQuestionId"`
	Difficulty         string     `json:"difficulty"`
	PaidOnly           bool       `json:"paidOnly,omitempty"`
	Content            string     `json:"content,omitempty"`
	TopicTags          []TopicTag `json:"topicTags"`
	Hints              []string   `json:"hints,omitempty"`
	SampleTestCase     string     `json:"sampleTestCase,omitempty"`
}
