package models

import (
	"time"
	"vms/src/types"
)

type User struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	Name       string         `json:"name"`
	Email      string         `gorm:"uniqueIndex" json:"email"`
	UID        string         `json:"uid"`
	Role       types.UserRole `gorm:"default:'visitor'" json:"role"`
	LastActive *time.Time     `json:"last_active,omitempty"`

	types.Timestamps
}
