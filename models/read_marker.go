package models

import "time"

// ReadMarker records that a user has acknowledged an answer.
type ReadMarker struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AnswerID  uint      `gorm:"uniqueIndex:idx_read_answer_user;not null" json:"answer_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_read_answer_user;index;not null" json:"user_id"`
	IsRead    bool      `gorm:"not null;default:true" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
