package thread

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/qaforum/models"
)

func TestQuestionForAnswer(t *testing.T) {
	s := newFakeStore()
	s.addQuestion(1)
	s.addAnswer(1, 10)
	s.addReply(10, 11)
	s.addReply(11, 12)
	e := NewEngine(s)

	for _, id := range []uint{10, 11, 12} {
		q, err := e.QuestionForAnswer(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, uint(1), q.ID)
	}
}

func TestQuestionForAnswer_BrokenParentChain(t *testing.T) {
	s := newFakeStore()
	s.addQuestion(1)
	s.addAnswer(1, 1)
	s.addReply(1, 2)
	delete(s.answers, 1)

	_, err := NewEngine(s).QuestionForAnswer(context.Background(), 2)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestQuestionForAnswer_MissingQuestion(t *testing.T) {
	s := newFakeStore()
	s.addAnswer(8, 10)

	_, err := NewEngine(s).QuestionForAnswer(context.Background(), 10)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestQuestionForAnswer_ParentCycle(t *testing.T) {
	s := newFakeStore()
	s.addReply(11, 10)
	s.addReply(10, 11)

	_, err := NewEngine(s).QuestionForAnswer(context.Background(), 10)
	assert.ErrorIs(t, err, models.ErrCycleDetected)
}

func TestQuestionForAnswer_ChainLongerThanDepthLimit(t *testing.T) {
	s := newFakeStore()
	s.addQuestion(1)
	s.addAnswer(1, 10)
	s.addReply(10, 11)
	s.addReply(11, 12)
	s.addReply(12, 13)
	e := NewEngine(s, WithLimits(2, 0))

	q, err := e.QuestionForAnswer(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, uint(1), q.ID)

	_, err = e.QuestionForAnswer(context.Background(), 13)
	assert.ErrorIs(t, err, models.ErrTraversalLimit)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestQuestionForReview(t *testing.T) {
	s := newFakeStore()
	s.addQuestion(1)
	s.addAnswer(1, 10)
	s.addReply(10, 11)
	onQuestion := s.addReview(true, 1, 100, 0)
	onReply := s.addReview(false, 11, 101, 0)
	orphan := s.addReview(false, 999, 102, 0)
	e := NewEngine(s)

	q, err := e.QuestionForReview(context.Background(), onQuestion)
	require.NoError(t, err)
	assert.Equal(t, uint(1), q.ID)

	q, err = e.QuestionForReview(context.Background(), onReply)
	require.NoError(t, err)
	assert.Equal(t, uint(1), q.ID)

	_, err = e.QuestionForReview(context.Background(), orphan)
	assert.ErrorIs(t, err, models.ErrNotFound)

	q, err = e.QuestionForReviewID(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, uint(1), q.ID)

	_, err = e.QuestionForReviewID(context.Background(), 4040)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
