package thread

import (
	"context"
	"fmt"

	"github.com/cppla/qaforum/models"
)

// Vote adds delta (+1 or -1) to a review's vote total. Totals have no floor.
func (e *Engine) Vote(ctx context.Context, reviewID uint, delta int) error {
	if delta != 1 && delta != -1 {
		return fmt.Errorf("review %d: delta %d: %w", reviewID, delta, models.ErrInvalidVote)
	}
	if err := e.store.RegisterVoteForReview(ctx, reviewID, delta); err != nil {
		return fmt.Errorf("vote on review %d: %w", reviewID, err)
	}
	return nil
}
