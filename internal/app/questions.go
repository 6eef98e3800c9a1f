package app

import (
	"context"
	"math/rand"
	"strings"

	"goldenbell/internal/domain"
)

// BuiltinQuestions is a small curated set used when no database is configured,
// so the battle engine runs standalone. Options use the "letter. text" format
// the evaluator understands.
var BuiltinQuestions = []domain.Question{
	{ID: 1, Category: "geography", Prompt: "What is the capital of France?", Options: "A. Paris\nB. London\nC. Berlin\nD. Madrid", Answer: "A. Paris", Type: domain.QuestionMultipleChoice},
	{ID: 2, Category: "geography", Prompt: "Which is the longest river in the world?", Options: "A. Amazon\nB. Nile\nC. Yangtze\nD. Mississippi", Answer: "B. Nile", Type: domain.QuestionMultipleChoice},
	{ID: 3, Category: "geography", Prompt: "Which country has the largest population?", Options: "A. China\nB. USA\nC. India\nD. Indonesia", Answer: "C. India", Type: domain.QuestionMultipleChoice},
	{ID: 4, Category: "geography", Prompt: "Name the smallest country in the world.", Answer: "Vatican City", Type: domain.QuestionOpenEnded},
	{ID: 5, Category: "geography", Prompt: "On which continent is the Sahara desert?", Answer: "Africa", Type: domain.QuestionOpenEnded},

	{ID: 6, Category: "science", Prompt: "What is the chemical symbol for gold?", Options: "A. Au\nB. Ag\nC. Gd\nD. Go", Answer: "A. Au", Type: domain.QuestionMultipleChoice},
	{ID: 7, Category: "science", Prompt: "How many planets are in the solar system?", Options: "A. 7\nB. 8\nC. 9\nD. 10", Answer: "B. 8", Type: domain.QuestionMultipleChoice},
	{ID: 8, Category: "science", Prompt: "What gas do plants absorb from the atmosphere?", Answer: "Carbon dioxide", Type: domain.QuestionOpenEnded},
	{ID: 9, Category: "science", Prompt: "What is the speed of light, in km/s (to the nearest thousand)?", Options: "A. 300000\nB. 150000\nC. 500000\nD. 1000000", Answer: "A. 300000", Type: domain.QuestionMultipleChoice},
	{ID: 10, Category: "science", Prompt: "What part of the cell contains genetic material?", Answer: "Nucleus", Type: domain.QuestionOpenEnded},

	{ID: 11, Category: "history", Prompt: "In which year did World War II end?", Options: "A. 1943\nB. 1944\nC. 1945\nD. 1946", Answer: "C. 1945", Type: domain.QuestionMultipleChoice},
	{ID: 12, Category: "history", Prompt: "Who was the first president of the United States?", Answer: "George Washington", Type: domain.QuestionOpenEnded},
	{ID: 13, Category: "history", Prompt: "Which ancient wonder stood in Alexandria?", Options: "A. The Colossus\nB. The Lighthouse\nC. The Hanging Gardens\nD. The Great Pyramid", Answer: "B. The Lighthouse", Type: domain.QuestionMultipleChoice},
	{ID: 14, Category: "history", Prompt: "Which empire built the Colosseum?", Answer: "Roman", Type: domain.QuestionOpenEnded},

	{ID: 15, Category: "math", Prompt: "What is 12 x 12?", Options: "A. 124\nB. 144\nC. 164\nD. 122", Answer: "B. 144", Type: domain.QuestionMultipleChoice},
	{ID: 16, Category: "math", Prompt: "What is the square root of 81?", Answer: "9", Type: domain.QuestionOpenEnded},
	{ID: 17, Category: "math", Prompt: "How many sides does a hexagon have?", Options: "A. 5\nB. 6\nC. 7\nD. 8", Answer: "B. 6", Type: domain.QuestionMultipleChoice},
	{ID: 18, Category: "math", Prompt: "What is 2 to the power of 10?", Answer: "1024", Type: domain.QuestionOpenEnded},
}

// BuiltinSource serves questions from the builtin set, shuffled per fetch
type BuiltinSource struct{}

// FetchQuestions implements QuestionSource
func (BuiltinSource) FetchQuestions(_ context.Context, category string, count int) ([]domain.Question, error) {
	pool := make([]domain.Question, 0, len(BuiltinQuestions))
	for _, q := range BuiltinQuestions {
		if category == "" || strings.EqualFold(q.Category, category) {
			pool = append(pool, q)
		}
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	if count > 0 && len(pool) > count {
		pool = pool[:count]
	}
	return pool, nil
}

// Categories returns the distinct categories of the builtin set
func (BuiltinSource) Categories(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	categories := make([]string, 0, 4)
	for _, q := range BuiltinQuestions {
		if !seen[q.Category] {
			seen[q.Category] = true
			categories = append(categories, q.Category)
		}
	}
	return categories, nil
}
