package thread

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/qaforum/models"
)

func TestIsUnresolved(t *testing.T) {
	assert.True(t, IsUnresolved(&models.Question{}))
	assert.False(t, IsUnresolved(&models.Question{PreferredAnswerID: 4}))
}

func TestPotentialAnswers(t *testing.T) {
	s := newFakeStore()
	q := s.addQuestion(1)
	s.addAnswer(1, 10)
	s.addReply(10, 11)
	s.addAnswer(1, 20)
	e := NewEngine(s)

	got, err := e.PotentialAnswers(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 11, 20}, ids(got))

	q.PreferredAnswerID = 11
	got, err = e.PotentialAnswers(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 20}, ids(got))
}

func TestSummarize(t *testing.T) {
	s := newFakeStore()
	q := s.addQuestion(1)
	s.addReview(true, 1, 100, 1)
	s.addAnswer(1, 10)
	s.addReply(10, 11)
	s.addReview(false, 11, 101, 0)
	q.PreferredAnswerID = 10

	sum, err := NewEngine(s).Summarize(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, Summary{QuestionID: 1, Unresolved: false, Answers: 2, PotentialAnswers: 1, Reviews: 2}, sum)
}

func TestSummarize_UsesStoredQuestion(t *testing.T) {
	s := newFakeStore()
	q := s.addQuestion(1)
	s.addAnswer(1, 10)
	s.addAnswer(1, 11)
	q.PreferredAnswerID = 11

	stale := *q
	stale.PreferredAnswerID = 0
	sum, err := NewEngine(s).Summarize(context.Background(), &stale)
	require.NoError(t, err)
	assert.Equal(t, Summary{QuestionID: 1, Unresolved: false, Answers: 2, PotentialAnswers: 1}, sum)
}

func TestSummarize_MissingQuestion(t *testing.T) {
	_, err := NewEngine(newFakeStore()).Summarize(context.Background(), &models.Question{ID: 3})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
