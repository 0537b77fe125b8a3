package thread

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cppla/qaforum/models"
)

// pathNode links an answer to the chain of answers it was reached through.
type pathNode struct {
	id     uint
	parent *pathNode
}

func (p *pathNode) contains(id uint) bool {
	for n := p; n != nil; n = n.parent {
		if n.id == id {
			return true
		}
	}
	return false
}

type frame struct {
	answer models.Answer
	depth  int
	parent *pathNode
}

// walk is the state of one traversal. It is never shared between calls.
type walk struct {
	e           *Engine
	withReviews bool

	pool    Pool
	rows    []Row
	answers []models.Answer
	stack   []frame

	truncated  bool
	depthNoted bool
}

func (e *Engine) newWalk(withReviews bool) *walk {
	return &walk{e: e, withReviews: withReviews, pool: NewPool()}
}

// assemble runs the full question traversal and returns the question as read
// from the store.
func (w *walk) assemble(ctx context.Context, questionID uint) (*models.Question, error) {
	q, err := w.e.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("assemble question %d: %w", questionID, err)
	}
	w.rows = append(w.rows, questionRow(q))

	if w.withReviews {
		reviews, err := w.e.store.GetReviewsForQuestion(ctx, q.ID)
		if err != nil {
			return nil, fmt.Errorf("reviews of question %d: %w", q.ID, err)
		}
		for i := range reviews {
			w.rows = append(w.rows, reviewRow(&reviews[i], 1))
		}
	}

	top, err := w.e.store.GetAnswersForQuestion(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("answers of question %d: %w", q.ID, err)
	}
	ids := make([]uint, len(top))
	for i := range top {
		ids[i] = top[i].ID
	}
	w.pool = NewPool(ids...)

	preferred, err := w.e.preferredAnswer(ctx, q)
	switch {
	case errors.Is(err, models.ErrInconsistentPreferredAnswer):
		w.e.logger.Warn("ignoring inconsistent preferred answer",
			zap.Uint("question_id", q.ID),
			zap.Uint("preferred_answer_id", q.PreferredAnswerID),
			zap.Error(err))
	case err != nil:
		return nil, err
	case preferred != nil:
		if err := w.visit(ctx, *preferred, 1, nil); err != nil {
			return nil, err
		}
	}

	for i := range top {
		if w.truncated {
			break
		}
		if w.pool.Placed(top[i].ID) {
			continue
		}
		if err := w.visit(ctx, top[i], 1, nil); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// visit places a and its whole reply subtree.
func (w *walk) visit(ctx context.Context, a models.Answer, depth int, parent *pathNode) error {
	w.stack = append(w.stack[:0], frame{answer: a, depth: depth, parent: parent})
	return w.drain(ctx)
}

// expandChildren places the replies of parentID, which sits at parentDepth
// and whose ancestry is path.
func (w *walk) expandChildren(ctx context.Context, parentID uint, parentDepth int, path *pathNode) error {
	w.stack = w.stack[:0]
	if err := w.pushChildren(ctx, parentID, parentDepth+1, path); err != nil {
		return err
	}
	return w.drain(ctx)
}

// drain pops frames until the stack is empty. Each frame emits its answer and
// reviews, then pushes its replies so they are handled before its siblings.
func (w *walk) drain(ctx context.Context) error {
	for len(w.stack) > 0 {
		f := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		id := f.answer.ID

		if f.parent.contains(id) {
			w.e.logger.Warn("reply cycle detected, branch skipped",
				zap.Uint("answer_id", id),
				zap.Uint("parent_id", f.parent.id),
				zap.Error(models.ErrCycleDetected))
			continue
		}
		if w.pool.Placed(id) {
			w.e.logger.Debug("answer already placed", zap.Uint("answer_id", id))
			continue
		}
		if f.depth > w.e.maxDepth {
			if !w.depthNoted {
				w.depthNoted = true
				w.e.logger.Warn("reply chain too deep, subtree skipped",
					zap.Uint("answer_id", id),
					zap.Int("max_depth", w.e.maxDepth),
					zap.Error(models.ErrTraversalLimit))
			}
			continue
		}
		if len(w.answers) >= w.e.maxNodes {
			w.truncated = true
			w.stack = w.stack[:0]
			w.e.logger.Warn("thread too large, remaining answers skipped",
				zap.Int("max_nodes", w.e.maxNodes),
				zap.Uints("unplaced_top_level", w.pool.Remaining()),
				zap.Error(models.ErrTraversalLimit))
			return nil
		}

		w.pool.take(id)
		w.answers = append(w.answers, f.answer)
		w.rows = append(w.rows, answerRow(&f.answer, f.depth))

		if w.withReviews {
			reviews, err := w.e.store.GetReviewsForAnswer(ctx, id)
			switch {
			case errors.Is(err, models.ErrNotFound):
				w.e.logger.Warn("answer vanished while loading reviews", zap.Uint("answer_id", id), zap.Error(err))
			case err != nil:
				return fmt.Errorf("reviews of answer %d: %w", id, err)
			}
			for i := range reviews {
				w.rows = append(w.rows, reviewRow(&reviews[i], f.depth+1))
			}
		}

		if err := w.pushChildren(ctx, id, f.depth+1, &pathNode{id: id, parent: f.parent}); err != nil {
			return err
		}
	}
	return nil
}

func (w *walk) pushChildren(ctx context.Context, parentID uint, depth int, path *pathNode) error {
	children, err := w.e.store.GetAnswersForAnswer(ctx, parentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			w.e.logger.Warn("reply subtree skipped, parent not found",
				zap.Uint("answer_id", parentID),
				zap.Error(err))
			return nil
		}
		return fmt.Errorf("replies of answer %d: %w", parentID, err)
	}
	// reversed so the first child is popped first
	for i := len(children) - 1; i >= 0; i-- {
		w.stack = append(w.stack, frame{answer: children[i], depth: depth, parent: path})
	}
	return nil
}
