package models

import "time"

// QuestionView stores aggregated thread views per day and question.
type QuestionView struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Date       time.Time `gorm:"index:idx_qv_date_question,unique;type:date;not null" json:"date"`
	QuestionID uint      `gorm:"index;index:idx_qv_date_question,unique;not null" json:"question_id"`
	Count      int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
