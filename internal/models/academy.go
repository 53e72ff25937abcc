package models

import (
	"time"
)

// Module is one lesson unit of the security academy
type Module struct {
	ID      int    `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary" yaml:"summary"`
	Content string `json:"content,omitempty" yaml:"content"`
}

// QuizQuestion is a multiple-choice question with a single correct option
type QuizQuestion struct {
	Question string   `json:"question" yaml:"question"`
	Options  []string `json:"options" yaml:"options"`
	Correct  int      `json:"correct" yaml:"correct"`
}

// PublicQuestion is a question without its answer key, served to clients
type PublicQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Public strips the answer key from the question
func (q QuizQuestion) Public() PublicQuestion {
	return PublicQuestion{Question: q.Question, Options: q.Options}
}

// Progress is the persisted module completion record
type Progress struct {
	Completed []int     `json:"completed"`
	Timestamp time.Time `json:"timestamp"`
}

// QuizResult summarises a finished quiz attempt
type QuizResult struct {
	Score   int  `json:"score"`
	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	Passed  bool `json:"passed"`
}

// ScoreQuizRequest is the body of POST /api/academy/quiz/score
type ScoreQuizRequest struct {
	Answers []int `json:"answers"`
}
