package thread

import (
	"context"
	"errors"
	"fmt"

	"github.com/cppla/qaforum/models"
)

// IsUnresolved reports whether no preferred answer has been chosen.
func IsUnresolved(q *models.Question) bool {
	return !q.HasPreferredAnswer()
}

// PotentialAnswers returns every answer in the thread except the preferred
// one, in thread order.
func (e *Engine) PotentialAnswers(ctx context.Context, questionID uint) ([]models.Answer, error) {
	q, answers, err := e.collectAnswers(ctx, questionID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Answer, 0, len(answers))
	for _, a := range answers {
		if q.HasPreferredAnswer() && a.ID == q.PreferredAnswerID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Summary holds per-thread counts for listings.
type Summary struct {
	QuestionID       uint `json:"question_id"`
	Unresolved       bool `json:"unresolved"`
	Answers          int  `json:"answers"`
	PotentialAnswers int  `json:"potential_answers"`
	Reviews          int  `json:"reviews"`
}

// Summarize counts the answers and reviews of a thread. Counts follow the
// question as read from the store, not the caller's copy.
func (e *Engine) Summarize(ctx context.Context, question *models.Question) (Summary, error) {
	if question == nil {
		return Summary{}, fmt.Errorf("summarize: nil question: %w", models.ErrNotFound)
	}
	q, answers, err := e.collectAnswers(ctx, question.ID)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{QuestionID: q.ID, Unresolved: IsUnresolved(q), Answers: len(answers)}
	for _, a := range answers {
		if a.ID != q.PreferredAnswerID {
			s.PotentialAnswers++
		}
	}
	s.Reviews, err = e.countReviews(ctx, q.ID, answers)
	if err != nil {
		return Summary{}, err
	}
	return s, nil
}

// countReviews uses the store's ReviewCounter when it has one and falls back
// to listing reviews per answer.
func (e *Engine) countReviews(ctx context.Context, questionID uint, answers []models.Answer) (int, error) {
	ids := make([]uint, len(answers))
	for i := range answers {
		ids[i] = answers[i].ID
	}
	if rc, ok := e.store.(ReviewCounter); ok {
		n, err := rc.CountReviews(ctx, questionID, ids)
		if err != nil {
			return 0, fmt.Errorf("count reviews of question %d: %w", questionID, err)
		}
		return int(n), nil
	}

	reviews, err := e.store.GetReviewsForQuestion(ctx, questionID)
	if err != nil {
		return 0, fmt.Errorf("reviews of question %d: %w", questionID, err)
	}
	n := len(reviews)
	for _, id := range ids {
		reviews, err := e.store.GetReviewsForAnswer(ctx, id)
		switch {
		case errors.Is(err, models.ErrNotFound):
			continue
		case err != nil:
			return 0, fmt.Errorf("reviews of answer %d: %w", id, err)
		}
		n += len(reviews)
	}
	return n, nil
}
