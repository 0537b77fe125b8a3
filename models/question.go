package models

import "time"

// Question is the root of a discussion thread.
type Question struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	AuthorID          uint      `gorm:"index;not null" json:"author_id"`
	Title             string    `gorm:"size:255;not null" json:"title"`
	Text              string    `gorm:"type:text;not null" json:"text"`
	PreferredAnswerID uint      `gorm:"index;not null;default:0" json:"preferred_answer_id"` // 0 means none chosen
	RelatedIDs        []uint    `gorm:"serializer:json;type:text" json:"related_ids"`         // direct answers, in posting order
	CreatedAt         time.Time `json:"created_on"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// HasPreferredAnswer reports whether an accepted answer has been designated.
func (q *Question) HasPreferredAnswer() bool {
	return q.PreferredAnswerID > 0
}
