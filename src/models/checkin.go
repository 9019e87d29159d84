package models

import (
	"time"
	"vms/src/types"
)

// CheckIn is the presence window for one token. At most one row per token may
// have a null checkout_time; the open-window guard runs inside the same
// transaction as the insert and a partial unique index backs it up.
// Rows are never deleted.
type CheckIn struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	TokenID          uint       `gorm:"->;<-:create" json:"token_id"`
	VisitorID        uint       `gorm:"->;<-:create" json:"visitor_id"`
	AppointmentID    uint       `gorm:"->;<-:create" json:"appointment_id"`
	CheckinTime      time.Time  `gorm:"->;<-:create" json:"checkin_time"`
	CheckoutTime     *time.Time `json:"checkout_time,omitempty"`
	ManuallyEnded    bool       `json:"manually_ended"`
	ExpectedCheckout *time.Time `json:"expected_checkout,omitempty"`

	Token       *Token       `gorm:"foreignKey:token_id" json:"token,omitempty"`
	Appointment *Appointment `gorm:"foreignKey:appointment_id" json:"appointment,omitempty"`

	types.Timestamps
}

// Open reports whether the presence window is still open. A manually ended
// visit stays open until the visitor physically checks out.
func (c *CheckIn) Open() bool {
	return c.CheckoutTime == nil
}

// Deadline is the instant after which the visitor counts as overstayed:
// the extended expectation when one was granted, otherwise check-in time
// plus the appointment window.
func (c *CheckIn) Deadline(appointment *Appointment) time.Time {
	if c.ExpectedCheckout != nil {
		return *c.ExpectedCheckout
	}
	return c.CheckinTime.Add(appointment.Duration())
}
