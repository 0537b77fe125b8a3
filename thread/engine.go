package thread

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cppla/qaforum/models"
)

const (
	// DefaultMaxDepth bounds how deep a reply chain is expanded.
	DefaultMaxDepth = 64
	// DefaultMaxNodes bounds how many answers one assembly may place.
	DefaultMaxNodes = 5000
)

// Engine assembles threads over a ContentStore. It holds no per-call state
// and is safe for concurrent use as long as the store is.
type Engine struct {
	store    ContentStore
	logger   *zap.Logger
	maxDepth int
	maxNodes int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for data-integrity warnings.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLimits overrides the traversal guards. Non-positive values keep the defaults.
func WithLimits(maxDepth, maxNodes int) Option {
	return func(e *Engine) {
		if maxDepth > 0 {
			e.maxDepth = maxDepth
		}
		if maxNodes > 0 {
			e.maxNodes = maxNodes
		}
	}
}

// NewEngine creates an Engine reading from store.
func NewEngine(store ContentStore, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		logger:   zap.NewNop(),
		maxDepth: DefaultMaxDepth,
		maxNodes: DefaultMaxNodes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AssembleRows flattens the thread rooted at question into display order:
// the question, its reviews, the preferred answer with its subtree, then the
// remaining answers with their subtrees. The question is re-read from the
// store so that votes and the preferred answer are current.
func (e *Engine) AssembleRows(ctx context.Context, question *models.Question) ([]Row, error) {
	if question == nil {
		return nil, fmt.Errorf("assemble: nil question: %w", models.ErrNotFound)
	}
	w := e.newWalk(true)
	if _, err := w.assemble(ctx, question.ID); err != nil {
		return nil, err
	}
	return w.rows, nil
}

// ExpandReplies emits the reply subtree below answerID in depth-first
// pre-order, each reply followed by its reviews. Depths are relative to
// answerID (direct replies at 1). pool is not modified; the returned pool has
// every emitted answer taken out of it.
func (e *Engine) ExpandReplies(ctx context.Context, answerID uint, pool Pool) ([]Row, Pool, error) {
	w := e.newWalk(true)
	w.pool = pool.Clone()
	if err := w.expandChildren(ctx, answerID, 0, &pathNode{id: answerID}); err != nil {
		return nil, pool, err
	}
	return w.rows, w.pool, nil
}

// CheckPreferred validates the preferred-answer pointer of q. It returns nil
// when none is set, and an error wrapping models.ErrInconsistentPreferredAnswer
// when the pointer is dangling or resolves to another question.
func (e *Engine) CheckPreferred(ctx context.Context, q *models.Question) error {
	_, err := e.preferredAnswer(ctx, q)
	return err
}

func (e *Engine) preferredAnswer(ctx context.Context, q *models.Question) (*models.Answer, error) {
	if !q.HasPreferredAnswer() {
		return nil, nil
	}
	id := q.PreferredAnswerID
	a, err := e.store.GetAnswer(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("question %d: answer %d: %w: %w", q.ID, id, models.ErrInconsistentPreferredAnswer, err)
		}
		return nil, err
	}
	owner, err := e.QuestionForAnswer(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrCycleDetected) || errors.Is(err, models.ErrTraversalLimit) {
			return nil, fmt.Errorf("question %d: answer %d: %w: %w", q.ID, id, models.ErrInconsistentPreferredAnswer, err)
		}
		return nil, err
	}
	if owner.ID != q.ID {
		return nil, fmt.Errorf("question %d: answer %d belongs to question %d: %w", q.ID, id, owner.ID, models.ErrInconsistentPreferredAnswer)
	}
	return a, nil
}

// collectAnswers walks the thread without reviews and returns every reachable
// answer in display order.
func (e *Engine) collectAnswers(ctx context.Context, questionID uint) (*models.Question, []models.Answer, error) {
	w := e.newWalk(false)
	q, err := w.assemble(ctx, questionID)
	if err != nil {
		return nil, nil, err
	}
	return q, w.answers, nil
}
