package domain

// QuestionType represents how a question is answered
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionOpenEnded      QuestionType = "open_ended"
)

// String returns the string representation of the question type
func (t QuestionType) String() string {
	return string(t)
}

// Question is an immutable question record fetched from the question supply.
// Options is a pre-formatted string for multiple-choice questions ("A. ...\nB. ...")
// and empty for open-ended ones.
type Question struct {
	ID       int64        `json:"id"`
	Category string       `json:"category"`
	Prompt   string       `json:"content"`
	Options  string       `json:"options"`
	Answer   string       `json:"answer"`
	Type     QuestionType `json:"type"`
}
