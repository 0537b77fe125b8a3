// Package thread assembles question threads into ordered display rows and
// derives read state, unresolved status and review votes from the same
// reply graph.
package thread

import (
	"context"

	"github.com/cppla/qaforum/models"
)

// ContentStore is the read/write surface the engine needs. Lookups of a
// missing id must return an error wrapping models.ErrNotFound. Child lists are
// returned in store order, which the engine preserves.
type ContentStore interface {
	GetQuestion(ctx context.Context, id uint) (*models.Question, error)
	GetAnswer(ctx context.Context, id uint) (*models.Answer, error)
	GetReview(ctx context.Context, id uint) (*models.Review, error)

	// GetAnswersForQuestion returns direct answers only.
	GetAnswersForQuestion(ctx context.Context, questionID uint) ([]models.Answer, error)
	// GetAnswersForAnswer returns direct replies only.
	GetAnswersForAnswer(ctx context.Context, answerID uint) ([]models.Answer, error)
	GetReviewsForQuestion(ctx context.Context, questionID uint) ([]models.Review, error)
	GetReviewsForAnswer(ctx context.Context, answerID uint) ([]models.Review, error)

	IsAnswerMarkedAsRead(ctx context.Context, answerID, userID uint) (bool, error)
	MarkAnswerAsRead(ctx context.Context, answerID, userID uint) error
	RegisterVoteForReview(ctx context.Context, reviewID uint, delta int) error
}

// ReviewCounter is an optional ContentStore extension that counts the reviews
// on a question and on the given answers in one round trip.
type ReviewCounter interface {
	CountReviews(ctx context.Context, questionID uint, answerIDs []uint) (int64, error)
}
