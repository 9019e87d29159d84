package models

import (
	"time"
	"vms/src/types"
)

// Appointment rows are produced by the external booking workflow. This
// service only reads them and links the issued token.
type Appointment struct {
	ID         uint                    `gorm:"primarykey" json:"id"`
	VisitorID  uint                    `json:"visitor_id,omitempty"`
	HostID     uint                    `json:"host_id,omitempty"`
	LocationID uint                    `json:"location_id,omitempty"`
	StartsAt   time.Time               `json:"starts_at,omitempty"`
	EndsAt     time.Time               `json:"ends_at,omitempty"`
	Status     types.AppointmentStatus `gorm:"default:'pending'" json:"status,omitempty"`
	TokenID    *uint                   `gorm:"uniqueIndex" json:"token_id,omitempty"`

	Visitor  *User     `gorm:"foreignKey:visitor_id" json:"visitor,omitempty"`
	Host     *User     `gorm:"foreignKey:host_id" json:"host,omitempty"`
	Location *Location `gorm:"foreignKey:location_id" json:"location,omitempty"`

	types.Timestamps
}

// Duration is the requested visit window length, used as the default
// presence allowance when no extension was granted.
func (a *Appointment) Duration() time.Duration {
	return a.EndsAt.Sub(a.StartsAt)
}
