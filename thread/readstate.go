package thread

import (
	"context"
	"fmt"

	"github.com/cppla/qaforum/models"
)

// ReadPartition splits the answers of one question by a user's read markers.
type ReadPartition struct {
	Read   []models.Answer `json:"read"`
	Unread []models.Answer `json:"unread"`
}

// IsRead reports whether userID has marked answerID as read.
func (e *Engine) IsRead(ctx context.Context, answerID, userID uint) (bool, error) {
	read, err := e.store.IsAnswerMarkedAsRead(ctx, answerID, userID)
	if err != nil {
		return false, fmt.Errorf("read state of answer %d: %w", answerID, err)
	}
	return read, nil
}

// MarkRead marks answerID as read for userID. Marking twice is a no-op.
func (e *Engine) MarkRead(ctx context.Context, answerID, userID uint) error {
	if _, err := e.store.GetAnswer(ctx, answerID); err != nil {
		return fmt.Errorf("mark answer %d read: %w", answerID, err)
	}
	read, err := e.IsRead(ctx, answerID, userID)
	if err != nil {
		return err
	}
	if read {
		return nil
	}
	if err := e.store.MarkAnswerAsRead(ctx, answerID, userID); err != nil {
		return fmt.Errorf("mark answer %d read: %w", answerID, err)
	}
	return nil
}

// Partition places every answer of questionID in exactly one bucket.
// Answers the user never marked are unread.
func (e *Engine) Partition(ctx context.Context, questionID, userID uint) (ReadPartition, error) {
	_, answers, err := e.collectAnswers(ctx, questionID)
	if err != nil {
		return ReadPartition{}, err
	}
	p := ReadPartition{Read: []models.Answer{}, Unread: []models.Answer{}}
	for _, a := range answers {
		read, err := e.IsRead(ctx, a.ID, userID)
		if err != nil {
			return ReadPartition{}, err
		}
		if read {
			p.Read = append(p.Read, a)
		} else {
			p.Unread = append(p.Unread, a)
		}
	}
	return p, nil
}
