package model

import "time"

// Display is a presentation definition. ContentDoc is an opaque JSON
// document discriminated by a "type" field; some shapes embed blob access
// references. The references are non-owning: deleting a display never
// cascades to the blobs it pointed at.
type Display struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OperatorID uint      `gorm:"not null;index" json:"operator_id"`
	ContentDoc string    `gorm:"type:text;not null" json:"content_doc"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	LastEditor string    `gorm:"size:64" json:"last_editor,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
