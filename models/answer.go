package models

import "time"

// Answer replies either to a question (QuestionID set) or to another answer
// (ParentAnswerID set). The owning question of a nested reply is found by
// walking ParentAnswerID upwards.
type Answer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AuthorID       uint      `gorm:"index;not null" json:"author_id"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	QuestionID     *uint     `gorm:"index" json:"question_id,omitempty"`
	ParentAnswerID *uint     `gorm:"index" json:"parent_answer_id,omitempty"`
	RelatedIDs     []uint    `gorm:"serializer:json;type:text" json:"related_ids"` // replies, in posting order
	CreatedAt      time.Time `json:"created_on"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsTopLevel reports whether the answer is attached directly to a question.
func (a *Answer) IsTopLevel() bool {
	return a.QuestionID != nil && *a.QuestionID > 0
}
