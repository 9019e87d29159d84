package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type PaginationQuery struct {
	Page  int `form:"page,default=1" binding:"omitempty,gte=1"`
	Limit int `form:"limit,default=20" binding:"omitempty,gte=1,lte=100"`
}

func (p PaginationQuery) Offset() int {
	return (p.Page - 1) * p.Limit
}

type IssueTokenRequestBody struct {
	AppointmentID uint `json:"appointment" binding:"required"`
	VisitorID     uint `json:"visitor" binding:"required"`
	HostID        uint `json:"host" binding:"required"`
}

type AccessCheckRequestBody struct {
	TokenID    uint `json:"token" binding:"required"`
	LocationID uint `json:"location" binding:"required"`
}

type CheckInRequestBody struct {
	TokenID uint `json:"token" binding:"required"`
}

type ExtendStayRequestBody struct {
	Minutes uint `json:"minutes" binding:"required,stayminutes"`
}

type AppointmentStatus string

const (
	APPOINTMENT_PENDING  AppointmentStatus = "pending"
	APPOINTMENT_APPROVED AppointmentStatus = "approved"
	APPOINTMENT_DECLINED AppointmentStatus = "declined"
)

type TokenStatus string

const (
	TOKEN_ACTIVE  TokenStatus = "active"
	TOKEN_EXPIRED TokenStatus = "expired"
	TOKEN_REVOKED TokenStatus = "revoked"
)

type AccessStatus string

const (
	ACCESS_ALLOWED    AccessStatus = "allowed"
	ACCESS_RESTRICTED AccessStatus = "restricted"
)

type AttemptStatus string

const (
	ATTEMPT_DENIED AttemptStatus = "denied"
)

type UserRole string

const (
	ROLE_VISITOR      UserRole = "visitor"
	ROLE_HOST         UserRole = "host"
	ROLE_RECEPTIONIST UserRole = "receptionist"
	ROLE_ADMIN        UserRole = "admin"
)

type EventName string

const (
	EVENT_VISITOR_CHECKED_IN EventName = "visitor.checked_in"
	EVENT_VISITOR_OVERSTAYED EventName = "visitor.overstayed"
	EVENT_ACCESS_DENIED      EventName = "access.denied"
)

type VisitorEvent struct {
	Name       EventName `json:"name"`
	VisitorID  uint      `json:"visitor_id"`
	TokenID    uint      `json:"token_id"`
	LocationID *uint     `json:"location_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
