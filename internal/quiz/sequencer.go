// Package quiz runs a linear multiple-choice quiz and scores it.
package quiz

import (
	"errors"
	"math"
	"sync"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// PassThreshold is the minimum score, in percent, that counts as passed
const PassThreshold = 80

// Unanswered marks a question slot with no recorded selection
const Unanswered = -1

var (
	ErrNotActive        = errors.New("quiz is not in progress")
	ErrOptionOutOfRange = errors.New("option index out of range")
)

// Phase is the lifecycle position of a quiz attempt
type Phase int

const (
	NotStarted Phase = iota
	InProgress
	Finished
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// State is a copy of the attempt state
type State struct {
	Phase           Phase
	CurrentQuestion int
	Answers         []int
	Score           int
	Active          bool
}

// Sequencer walks a fixed question list one question at a time
type Sequencer struct {
	mu        sync.Mutex
	questions []models.QuizQuestion

	phase   Phase
	current int
	answers []int
	score   int
}

// NewSequencer creates a sequencer over questions. The quiz starts in
// NotStarted; call Start to begin an attempt.
func NewSequencer(questions []models.QuizQuestion) *Sequencer {
	return &Sequencer{questions: questions}
}

// Start resets to the first question with no answers
func (s *Sequencer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = InProgress
	s.current = 0
	s.answers = nil
	s.score = 0

	if len(s.questions) == 0 {
		s.phase = Finished
	}
}

// Retake starts a fresh attempt
func (s *Sequencer) Retake() {
	s.Start()
}

// Question returns the current question
func (s *Sequencer) Question() (models.QuizQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != InProgress {
		return models.QuizQuestion{}, false
	}
	return s.questions[s.current], true
}

// SelectAnswer records index for the current question, replacing any
// earlier selection.
func (s *Sequencer) SelectAnswer(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != InProgress {
		return ErrNotActive
	}
	if index < 0 || index >= len(s.questions[s.current].Options) {
		return ErrOptionOutOfRange
	}

	for len(s.answers) <= s.current {
		s.answers = append(s.answers, Unanswered)
	}
	s.answers[s.current] = index
	return nil
}

// Advance moves to the next question. On the last question it scores the
// attempt and finishes; finished is true in that case.
func (s *Sequencer) Advance() (finished bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != InProgress {
		return false, ErrNotActive
	}

	if s.current < len(s.questions)-1 {
		s.current++
		return false, nil
	}

	s.score = Score(s.questions, s.answers)
	s.phase = Finished
	return true, nil
}

// Score returns the current score. Before the attempt finishes it is the
// score the recorded answers would earn.
func (s *Sequencer) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == Finished {
		return s.score
	}
	return Score(s.questions, s.answers)
}

// Total returns the number of questions
func (s *Sequencer) Total() int {
	return len(s.questions)
}

// State returns a copy of the attempt state
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Phase:           s.phase,
		CurrentQuestion: s.current,
		Answers:         append([]int(nil), s.answers...),
		Score:           s.score,
		Active:          s.phase == InProgress,
	}
}

// Result summarises the attempt
func (s *Sequencer) Result() models.QuizResult {
	return NewResult(s.Score(), s.Total())
}

// Score counts answers matching the answer key and returns the rounded
// percentage over all questions. Missing answers count as wrong.
func Score(questions []models.QuizQuestion, answers []int) int {
	if len(questions) == 0 {
		return 0
	}

	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.Correct {
			correct++
		}
	}
	return percent(correct, len(questions))
}

// Passed reports whether score meets PassThreshold
func Passed(score int) bool {
	return score >= PassThreshold
}

// NewResult builds a result from a score. Correct is derived back from the
// percentage, as shown on the results screen.
func NewResult(score, total int) models.QuizResult {
	return models.QuizResult{
		Score:   score,
		Correct: int(math.Round(float64(score) / 100 * float64(total))),
		Total:   total,
		Passed:  Passed(score),
	}
}

func percent(n, total int) int {
	return int(math.Round(float64(n) / float64(total) * 100))
}
