package model

import (
	"strconv"
	"time"
)

// Blob is an immutable stored media asset. Payload bytes are written once
// at upload time; mutation is always delete + re-upload.
type Blob struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OperatorID   uint      `gorm:"not null;index" json:"operator_id"`
	StoredName   string    `gorm:"size:128;not null;uniqueIndex" json:"stored_name"`
	OriginalName string    `gorm:"size:256;not null" json:"original_name"`
	MimeType     string    `gorm:"size:128;not null" json:"mime_type"`
	SizeBytes    int64     `gorm:"not null" json:"size_bytes"`
	Payload      []byte    `gorm:"type:longblob" json:"-"`
	Description  string    `gorm:"size:512" json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccessReference is the canonical string form by which content documents
// point at this blob. The reachability scan compares this exact form.
func (b *Blob) AccessReference() string {
	return BlobAccessReference(b.ID)
}

func BlobAccessReference(id uint) string {
	return "/files/" + strconv.FormatUint(uint64(id), 10)
}
