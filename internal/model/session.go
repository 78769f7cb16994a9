package model

import "time"

// Session is an operator's mutable editing state. At most one row per
// operator has IsActive = true; logout deactivates, it never deletes, so
// inactive rows remain for history listings.
//
// ActiveMarker mirrors OperatorID while the session is active and is NULL
// otherwise; its unique index admits one active row per operator.
type Session struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	OperatorID         uint      `gorm:"not null;index" json:"operator_id"`
	SessionToken       string    `gorm:"size:64;not null;uniqueIndex" json:"session_token"`
	DisplaySettingsDoc string    `gorm:"type:text" json:"display_settings_doc"`
	SlideSequenceDoc   string    `gorm:"type:text" json:"slide_sequence_doc"`
	AppSettingsDoc     string    `gorm:"type:text" json:"app_settings_doc"`
	IsActive           bool      `gorm:"not null;index" json:"is_active"`
	ActiveMarker       *uint     `gorm:"uniqueIndex" json:"-"`
	LastActivity       time.Time `gorm:"not null;index" json:"last_activity"`
	DeviceInfo         string    `gorm:"size:256" json:"device_info,omitempty"`
	OriginAddress      string    `gorm:"size:64" json:"origin_address,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
