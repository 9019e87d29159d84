package models

import "vms/src/types"

// AccessRecord is the append-only audit trail: exactly one row per access
// attempt, whatever the outcome.
type AccessRecord struct {
	ID         uint               `gorm:"primarykey" json:"id"`
	VisitorID  uint               `gorm:"->;<-:create" json:"visitor_id"`
	TokenID    uint               `gorm:"->;<-:create" json:"token_id"`
	LocationID uint               `gorm:"->;<-:create" json:"location_id"`
	Status     types.AccessStatus `gorm:"->;<-:create" json:"status"`

	Token    *Token    `gorm:"foreignKey:token_id" json:"token,omitempty"`
	Location *Location `gorm:"foreignKey:location_id" json:"location,omitempty"`

	types.Timestamps
}
