// Package store persists forum content with gorm and serves it to the thread engine.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/qaforum/models"
)

// GormStore implements thread.ContentStore plus the forum's write operations.
type GormStore struct {
	db *gorm.DB
}

// New wraps an initialized gorm connection.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Models lists every table the store reads or writes, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Question{},
		&models.Answer{},
		&models.Review{},
		&models.ReadMarker{},
		&models.QuestionView{},
	}
}

// DB exposes the underlying connection for health checks.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func wrap(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, models.ErrNotFound)
	}
	return fmt.Errorf("%s %d: %w", what, id, err)
}

// GetQuestion loads a question by id.
func (s *GormStore) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	if err := s.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, wrap(err, "question", id)
	}
	return &q, nil
}

// GetAnswer loads an answer by id.
func (s *GormStore) GetAnswer(ctx context.Context, id uint) (*models.Answer, error) {
	var a models.Answer
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, wrap(err, "answer", id)
	}
	return &a, nil
}

// GetReview loads a review by id.
func (s *GormStore) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	var r models.Review
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, wrap(err, "review", id)
	}
	return &r, nil
}

func (s *GormStore) answerExists(ctx context.Context, id uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Answer{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return wrap(err, "answer", id)
	}
	if n == 0 {
		return fmt.Errorf("answer %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// GetAnswersForQuestion returns the answers posted directly on a question, oldest first.
func (s *GormStore) GetAnswersForQuestion(ctx context.Context, questionID uint) ([]models.Answer, error) {
	var answers []models.Answer
	if err := s.db.WithContext(ctx).Where("question_id = ?", questionID).Order("id ASC").Find(&answers).Error; err != nil {
		return nil, wrap(err, "answers of question", questionID)
	}
	return answers, nil
}

// GetAnswersForAnswer returns direct replies, oldest first. A missing parent is ErrNotFound.
func (s *GormStore) GetAnswersForAnswer(ctx context.Context, answerID uint) ([]models.Answer, error) {
	if err := s.answerExists(ctx, answerID); err != nil {
		return nil, err
	}
	var answers []models.Answer
	if err := s.db.WithContext(ctx).Where("parent_answer_id = ?", answerID).Order("id ASC").Find(&answers).Error; err != nil {
		return nil, wrap(err, "replies of answer", answerID)
	}
	return answers, nil
}

// GetReviewsForQuestion returns the reviews of a question, oldest first.
func (s *GormStore) GetReviewsForQuestion(ctx context.Context, questionID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.db.WithContext(ctx).Where("for_question = ? AND related_id = ?", true, questionID).Order("id ASC").Find(&reviews).Error; err != nil {
		return nil, wrap(err, "reviews of question", questionID)
	}
	return reviews, nil
}

// GetReviewsForAnswer returns the reviews of an answer, oldest first.
func (s *GormStore) GetReviewsForAnswer(ctx context.Context, answerID uint) ([]models.Review, error) {
	if err := s.answerExists(ctx, answerID); err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := s.db.WithContext(ctx).Where("for_question = ? AND related_id = ?", false, answerID).Order("id ASC").Find(&reviews).Error; err != nil {
		return nil, wrap(err, "reviews of answer", answerID)
	}
	return reviews, nil
}

// CountReviews counts the reviews on questionID and on answerIDs together.
func (s *GormStore) CountReviews(ctx context.Context, questionID uint, answerIDs []uint) (int64, error) {
	tx := s.db.WithContext(ctx).Model(&models.Review{})
	if len(answerIDs) == 0 {
		tx = tx.Where("for_question = ? AND related_id = ?", true, questionID)
	} else {
		tx = tx.Where("(for_question = ? AND related_id = ?) OR (for_question = ? AND related_id IN ?)", true, questionID, false, answerIDs)
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, wrap(err, "review count of question", questionID)
	}
	return n, nil
}

// IsAnswerMarkedAsRead reports whether a read marker exists for the pair.
func (s *GormStore) IsAnswerMarkedAsRead(ctx context.Context, answerID, userID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ReadMarker{}).
		Where("answer_id = ? AND user_id = ? AND is_read = ?", answerID, userID, true).
		Count(&n).Error
	if err != nil {
		return false, wrap(err, "read marker of answer", answerID)
	}
	return n > 0, nil
}

// MarkAnswerAsRead upserts a read marker, so concurrent marks do not collide.
func (s *GormStore) MarkAnswerAsRead(ctx context.Context, answerID, userID uint) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "answer_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_read": true, "updated_at": time.Now()}),
	}).Create(&models.ReadMarker{AnswerID: answerID, UserID: userID, IsRead: true}).Error
	if err != nil {
		return wrap(err, "mark read answer", answerID)
	}
	return nil
}

// RegisterVoteForReview adds delta to the review's total in a single UPDATE.
func (s *GormStore) RegisterVoteForReview(ctx context.Context, reviewID uint, delta int) error {
	res := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", delta))
	if res.Error != nil {
		return wrap(res.Error, "vote review", reviewID)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review %d: %w", reviewID, models.ErrNotFound)
	}
	return nil
}
