package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

func questions(n int) []models.QuizQuestion {
	qs := make([]models.QuizQuestion, n)
	for i := range qs {
		qs[i] = models.QuizQuestion{
			Question: "q",
			Options:  []string{"a", "b", "c", "d"},
			Correct:  i % 4,
		}
	}
	return qs
}

func play(t *testing.T, s *Sequencer, pick func(i int, q models.QuizQuestion) int) {
	t.Helper()
	for i := 0; ; i++ {
		q, ok := s.Question()
		require.True(t, ok)
		require.NoError(t, s.SelectAnswer(pick(i, q)))
		done, err := s.Advance()
		require.NoError(t, err)
		if done {
			return
		}
	}
}

func TestAllCorrect(t *testing.T) {
	s := NewSequencer(questions(20))
	s.Start()
	play(t, s, func(_ int, q models.QuizQuestion) int { return q.Correct })

	st := s.State()
	assert.Equal(t, Finished, st.Phase)
	assert.False(t, st.Active)
	assert.Equal(t, 100, s.Score())

	res := s.Result()
	assert.Equal(t, models.QuizResult{Score: 100, Correct: 20, Total: 20, Passed: true}, res)
}

func TestNoneCorrect(t *testing.T) {
	s := NewSequencer(questions(10))
	s.Start()
	play(t, s, func(_ int, q models.QuizQuestion) int { return (q.Correct + 1) % 4 })

	assert.Equal(t, 0, s.Score())
	assert.False(t, s.Result().Passed)
}

func TestPassThreshold(t *testing.T) {
	assert.True(t, Passed(80))
	assert.False(t, Passed(79))
	assert.True(t, Passed(100))
	assert.False(t, Passed(0))
}

func TestScoreRounding(t *testing.T) {
	qs := questions(3)
	assert.Equal(t, 67, Score(qs, []int{0, 1, 0}))
	assert.Equal(t, 33, Score(qs, []int{0}))
	assert.Equal(t, 0, Score(nil, nil))

	// sparse answers only count where recorded
	assert.Equal(t, 33, Score(qs, []int{Unanswered, Unanswered, 2}))
}

func TestSelectAnswerOverwrites(t *testing.T) {
	s := NewSequencer(questions(2))
	s.Start()

	require.NoError(t, s.SelectAnswer(3))
	require.NoError(t, s.SelectAnswer(0))
	assert.Equal(t, []int{0}, s.State().Answers)
}

func TestSelectAnswerErrors(t *testing.T) {
	s := NewSequencer(questions(2))
	assert.ErrorIs(t, s.SelectAnswer(0), ErrNotActive)

	s.Start()
	assert.ErrorIs(t, s.SelectAnswer(4), ErrOptionOutOfRange)
	assert.ErrorIs(t, s.SelectAnswer(-1), ErrOptionOutOfRange)

	_, err := NewSequencer(questions(1)).Advance()
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestSkippedQuestionCountsWrong(t *testing.T) {
	s := NewSequencer(questions(2))
	s.Start()

	done, err := s.Advance() // no answer for question 0
	require.NoError(t, err)
	require.False(t, done)
	require.NoError(t, s.SelectAnswer(1))
	done, err = s.Advance()
	require.NoError(t, err)
	require.True(t, done)

	assert.Equal(t, 50, s.Score())
	assert.Equal(t, []int{Unanswered, 1}, s.State().Answers)
}

func TestRetakeResets(t *testing.T) {
	s := NewSequencer(questions(5))
	s.Start()
	play(t, s, func(_ int, q models.QuizQuestion) int { return q.Correct })
	require.Equal(t, Finished, s.State().Phase)

	s.Retake()
	st := s.State()
	assert.Equal(t, InProgress, st.Phase)
	assert.True(t, st.Active)
	assert.Equal(t, 0, st.CurrentQuestion)
	assert.Empty(t, st.Answers)
	assert.Equal(t, 0, st.Score)
}

func TestEmptyQuizFinishesImmediately(t *testing.T) {
	s := NewSequencer(nil)
	s.Start()

	assert.Equal(t, Finished, s.State().Phase)
	assert.Equal(t, 0, s.Score())
	_, ok := s.Question()
	assert.False(t, ok)
}

func TestNewResultCorrectCount(t *testing.T) {
	assert.Equal(t, 16, NewResult(80, 20).Correct)
	assert.Equal(t, 2, NewResult(67, 3).Correct)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "in_progress", InProgress.String())
	assert.Equal(t, "unknown", Phase(9).String())
}
