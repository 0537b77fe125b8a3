package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/qaforum/models"
)

// CreateQuestion inserts a new question with no answers and no preferred answer.
func (s *GormStore) CreateQuestion(ctx context.Context, q *models.Question) error {
	q.PreferredAnswerID = 0
	q.RelatedIDs = []uint{}
	if err := s.db.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// UpdateQuestion replaces the title and text of a question.
func (s *GormStore) UpdateQuestion(ctx context.Context, id uint, title, text string) (*models.Question, error) {
	q, err := s.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Title = title
	q.Text = text
	if err := s.db.WithContext(ctx).Model(q).Select("title", "text").Updates(q).Error; err != nil {
		return nil, wrap(err, "update question", id)
	}
	return q, nil
}

// SetPreferredAnswer stores the preferred-answer pointer. answerID 0 clears it.
// Whether the answer belongs to the question is checked by the caller.
func (s *GormStore) SetPreferredAnswer(ctx context.Context, questionID, answerID uint) error {
	if _, err := s.GetQuestion(ctx, questionID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", questionID).
		UpdateColumn("preferred_answer_id", answerID).Error
	if err != nil {
		return wrap(err, "set preferred answer of question", questionID)
	}
	return nil
}

// CreateAnswer inserts an answer on a question or a reply to an answer, and
// appends its id to the parent's related ids in the same transaction.
func (s *GormStore) CreateAnswer(ctx context.Context, a *models.Answer) error {
	toQuestion := a.QuestionID != nil && *a.QuestionID > 0
	toAnswer := a.ParentAnswerID != nil && *a.ParentAnswerID > 0
	if toQuestion == toAnswer {
		return models.ErrInvalidParent
	}
	a.RelatedIDs = []uint{}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if toQuestion {
			var q models.Question
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&q, *a.QuestionID).Error; err != nil {
				return wrap(err, "question", *a.QuestionID)
			}
			if err := tx.Create(a).Error; err != nil {
				return fmt.Errorf("create answer: %w", err)
			}
			related := append(q.RelatedIDs, a.ID)
			return tx.Model(&q).Select("related_ids").Updates(&models.Question{RelatedIDs: related}).Error
		}

		var parent models.Answer
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&parent, *a.ParentAnswerID).Error; err != nil {
			return wrap(err, "answer", *a.ParentAnswerID)
		}
		if err := tx.Create(a).Error; err != nil {
			return fmt.Errorf("create reply: %w", err)
		}
		related := append(parent.RelatedIDs, a.ID)
		return tx.Model(&parent).Select("related_ids").Updates(&models.Answer{RelatedIDs: related}).Error
	})
}

// subtreeIDs collects rootIDs and every reply below them, breadth first.
// Ids already collected are not followed again.
func subtreeIDs(tx *gorm.DB, rootIDs []uint) ([]uint, error) {
	seen := make(map[uint]struct{}, len(rootIDs))
	all := make([]uint, 0, len(rootIDs))
	frontier := rootIDs
	for len(frontier) > 0 {
		next := []uint{}
		for _, id := range frontier {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
			next = append(next, id)
		}
		if len(next) == 0 {
			break
		}
		var children []uint
		if err := tx.Model(&models.Answer{}).Where("parent_answer_id IN ?", next).Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		frontier = children
	}
	return all, nil
}

func deleteAnswers(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("for_question = ? AND related_id IN ?", false, ids).Delete(&models.Review{}).Error; err != nil {
		return err
	}
	if err := tx.Where("answer_id IN ?", ids).Delete(&models.ReadMarker{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Question{}).Where("preferred_answer_id IN ?", ids).UpdateColumn("preferred_answer_id", 0).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Answer{}).Error
}

// DeleteAnswer removes an answer with its replies, their reviews and read
// markers, and unlinks it from its parent.
func (s *GormStore) DeleteAnswer(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Answer
		if err := tx.First(&a, id).Error; err != nil {
			return wrap(err, "answer", id)
		}
		ids, err := subtreeIDs(tx, []uint{id})
		if err != nil {
			return wrap(err, "collect replies of answer", id)
		}
		if err := deleteAnswers(tx, ids); err != nil {
			return wrap(err, "delete answer", id)
		}

		switch {
		case a.IsTopLevel():
			var q models.Question
			if err := tx.First(&q, *a.QuestionID).Error; err == nil {
				return tx.Model(&q).Select("related_ids").Updates(&models.Question{RelatedIDs: without(q.RelatedIDs, id)}).Error
			}
		case a.ParentAnswerID != nil:
			var parent models.Answer
			if err := tx.First(&parent, *a.ParentAnswerID).Error; err == nil {
				return tx.Model(&parent).Select("related_ids").Updates(&models.Answer{RelatedIDs: without(parent.RelatedIDs, id)}).Error
			}
		}
		return nil
	})
}

// DeleteQuestion removes a question and everything attached to it.
func (s *GormStore) DeleteQuestion(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q models.Question
		if err := tx.First(&q, id).Error; err != nil {
			return wrap(err, "question", id)
		}
		var top []uint
		if err := tx.Model(&models.Answer{}).Where("question_id = ?", id).Pluck("id", &top).Error; err != nil {
			return wrap(err, "answers of question", id)
		}
		ids, err := subtreeIDs(tx, top)
		if err != nil {
			return wrap(err, "collect answers of question", id)
		}
		if err := deleteAnswers(tx, ids); err != nil {
			return wrap(err, "delete answers of question", id)
		}
		if err := tx.Where("for_question = ? AND related_id = ?", true, id).Delete(&models.Review{}).Error; err != nil {
			return wrap(err, "delete reviews of question", id)
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionView{}).Error; err != nil {
			return wrap(err, "delete views of question", id)
		}
		return tx.Delete(&q).Error
	})
}

// CreateReview inserts a review after checking that its target exists.
func (s *GormStore) CreateReview(ctx context.Context, r *models.Review) error {
	if r.ForQuestion {
		if _, err := s.GetQuestion(ctx, r.RelatedID); err != nil {
			return err
		}
	} else if err := s.answerExists(ctx, r.RelatedID); err != nil {
		return err
	}
	r.VoteCount = 0
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// DeleteReview removes a single review.
func (s *GormStore) DeleteReview(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return wrap(res.Error, "delete review", id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review %d: %w", id, models.ErrNotFound)
	}
	return nil
}

func without(ids []uint, id uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
