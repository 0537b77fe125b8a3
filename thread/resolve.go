package thread

import (
	"context"
	"fmt"

	"github.com/cppla/qaforum/models"
)

// QuestionForAnswer follows parent links from answerID up to its root
// question. A broken link anywhere on the way yields models.ErrNotFound.
func (e *Engine) QuestionForAnswer(ctx context.Context, answerID uint) (*models.Question, error) {
	seen := make(map[uint]struct{})
	id := answerID
	for hops := 0; ; hops++ {
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("answer %d: parent chain revisits %d: %w", answerID, id, models.ErrCycleDetected)
		}
		if hops > e.maxDepth {
			return nil, fmt.Errorf("answer %d: parent chain longer than %d: %w", answerID, e.maxDepth, models.ErrTraversalLimit)
		}
		seen[id] = struct{}{}

		a, err := e.store.GetAnswer(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("answer %d: resolve %d: %w", answerID, id, err)
		}
		if a.IsTopLevel() {
			q, err := e.store.GetQuestion(ctx, *a.QuestionID)
			if err != nil {
				return nil, fmt.Errorf("answer %d: question %d: %w", answerID, *a.QuestionID, err)
			}
			return q, nil
		}
		if a.ParentAnswerID == nil || *a.ParentAnswerID == 0 {
			return nil, fmt.Errorf("answer %d: %d has no parent: %w", answerID, id, models.ErrNotFound)
		}
		id = *a.ParentAnswerID
	}
}

// QuestionForReview resolves the question a review ultimately belongs to,
// either directly or through the answer it reviews.
func (e *Engine) QuestionForReview(ctx context.Context, r *models.Review) (*models.Question, error) {
	if r == nil {
		return nil, fmt.Errorf("review: nil: %w", models.ErrNotFound)
	}
	if r.ForQuestion {
		q, err := e.store.GetQuestion(ctx, r.RelatedID)
		if err != nil {
			return nil, fmt.Errorf("review %d: question %d: %w", r.ID, r.RelatedID, err)
		}
		return q, nil
	}
	q, err := e.QuestionForAnswer(ctx, r.RelatedID)
	if err != nil {
		return nil, fmt.Errorf("review %d: %w", r.ID, err)
	}
	return q, nil
}

// QuestionForReviewID loads a review and resolves its question.
func (e *Engine) QuestionForReviewID(ctx context.Context, reviewID uint) (*models.Question, error) {
	r, err := e.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("review %d: %w", reviewID, err)
	}
	return e.QuestionForReview(ctx, r)
}
