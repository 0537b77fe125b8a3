package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/qaforum/models"
)

// Counts aggregates forum-wide totals.
type Counts struct {
	Questions  int64 `json:"question_count"`
	Unresolved int64 `json:"unresolved_count"`
	Answers    int64 `json:"answer_count"`
	Reviews    int64 `json:"review_count"`
	ViewsToday int64 `json:"views_today"`
}

// ListQuestions returns one page of questions, newest first.
func (s *GormStore) ListQuestions(ctx context.Context, page, pageSize int, unresolvedOnly bool) ([]models.Question, int64, error) {
	var (
		questions []models.Question
		total     int64
	)
	scoped := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Question{})
		if unresolvedOnly {
			q = q.Where("preferred_answer_id = ?", 0)
		}
		return q
	}
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}
	offset := (page - 1) * pageSize
	if err := scoped().Order("created_at DESC").Order("id DESC").Offset(offset).Limit(pageSize).Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	return questions, total, nil
}

// CountContent returns forum totals. Individual count failures degrade to 0.
func (s *GormStore) CountContent(ctx context.Context) Counts {
	var c Counts
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Question{}).Count(&c.Questions).Error; err != nil {
		c.Questions = 0
	}
	if err := db.Model(&models.Question{}).Where("preferred_answer_id = ?", 0).Count(&c.Unresolved).Error; err != nil {
		c.Unresolved = 0
	}
	if err := db.Model(&models.Answer{}).Count(&c.Answers).Error; err != nil {
		c.Answers = 0
	}
	if err := db.Model(&models.Review{}).Count(&c.Reviews).Error; err != nil {
		c.Reviews = 0
	}
	c.ViewsToday = s.ViewsOn(ctx, time.Now())
	return c
}

func localMidnight(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RecordQuestionView bumps today's view counter of a question.
func (s *GormStore) RecordQuestionView(ctx context.Context, questionID uint) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
	}).Create(&models.QuestionView{Date: localMidnight(time.Now()), QuestionID: questionID, Count: 1}).Error
	if err != nil {
		return wrap(err, "record view of question", questionID)
	}
	return nil
}

// ViewsOn sums the thread views recorded on the day of t.
func (s *GormStore) ViewsOn(ctx context.Context, t time.Time) int64 {
	var views int64
	if err := s.db.WithContext(ctx).Model(&models.QuestionView{}).
		Where("date = ?", localMidnight(t)).
		Select("COALESCE(SUM(count),0)").
		Scan(&views).Error; err != nil {
		return 0
	}
	return views
}
