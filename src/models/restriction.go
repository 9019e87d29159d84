package models

import "vms/src/types"

// RestrictedAttempt and VisitorRestriction are written only by the access
// engine's deny branch, in the same transaction as the AccessRecord.
type RestrictedAttempt struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	AccessPoint string              `gorm:"->;<-:create" json:"access_point"`
	Status      types.AttemptStatus `gorm:"->;<-:create;default:'denied'" json:"status"`

	types.Timestamps
}

type VisitorRestriction struct {
	ID        uint `gorm:"primarykey" json:"id"`
	TokenID   uint `gorm:"->;<-:create" json:"token_id"`
	AttemptID uint `gorm:"->;<-:create" json:"attempt_id"`
	VisitorID uint `gorm:"->;<-:create" json:"visitor_id"`

	Attempt *RestrictedAttempt `gorm:"foreignKey:attempt_id" json:"attempt,omitempty"`
	Token   *Token             `gorm:"foreignKey:token_id" json:"token,omitempty"`

	types.Timestamps
}
