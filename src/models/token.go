package models

import (
	"time"
	"vms/src/types"
)

// Token ids are allocated by the issuer from the lowest unused value, so the
// id space stays dense even after revocations. No autoincrement.
type Token struct {
	ID            uint              `gorm:"primarykey" json:"id"`
	VisitorID     uint              `gorm:"->;<-:create" json:"visitor_id"`
	HostID        uint              `gorm:"->;<-:create" json:"host_id"`
	AppointmentID uint              `gorm:"->;<-:create;uniqueIndex" json:"appointment_id"`
	IssuedAt      time.Time         `gorm:"->;<-:create" json:"issued_at"`
	ExpiredAt     time.Time         `gorm:"->;<-:create" json:"expired_at"`
	Status        types.TokenStatus `gorm:"default:'active'" json:"status"`

	Visitor     *User        `gorm:"foreignKey:visitor_id" json:"visitor,omitempty"`
	Host        *User        `gorm:"foreignKey:host_id" json:"host,omitempty"`
	Appointment *Appointment `gorm:"foreignKey:appointment_id" json:"appointment,omitempty"`

	types.Timestamps
}

// Usable reports whether the token still grants entry at the given instant.
// Expiry is evaluated lazily; nothing flips the row in the background.
func (t *Token) Usable(now time.Time) bool {
	return t.Status == types.TOKEN_ACTIVE && now.Before(t.ExpiredAt)
}
