package domain

import "strings"

// IsCorrect reports whether a submitted answer matches the question's
// canonical answer. It never panics; an empty submission is always wrong.
//
// Open-ended answers compare case-insensitively after trimming whitespace.
// Multiple-choice answers match either verbatim or by option letter, so a
// player may submit just "a" instead of the full "A. Paris".
func IsCorrect(q Question, submitted string) bool {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return false
	}

	switch q.Type {
	case QuestionOpenEnded:
		return strings.EqualFold(submitted, strings.TrimSpace(q.Answer))
	case QuestionMultipleChoice:
		if submitted == q.Answer {
			return true
		}
		return optionLetter(submitted) == optionLetter(q.Answer)
	default:
		return false
	}
}

// optionLetter extracts the token before the first '.', trimmed and upper-cased
func optionLetter(s string) string {
	head, _, _ := strings.Cut(s, ".")
	return strings.ToUpper(strings.TrimSpace(head))
}
