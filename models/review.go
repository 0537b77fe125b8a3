package models

import "time"

// Review is a voted critique of a question or an answer.
type Review struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	ForQuestion bool      `gorm:"index:idx_review_target;not null" json:"for_question"`
	RelatedID   uint      `gorm:"index:idx_review_target;not null" json:"related_id"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	VoteCount   int       `gorm:"not null;default:0" json:"vote_count"`
	CreatedAt   time.Time `json:"created_on"`
	UpdatedAt   time.Time `json:"updated_at"`
}
