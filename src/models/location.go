package models

import "vms/src/types"

type Location struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`

	types.Timestamps
}

// HostPermission is a standing grant for a host to receive visitors at a
// restricted location, independent of any single appointment.
type HostPermission struct {
	ID         uint `gorm:"primarykey" json:"id"`
	HostID     uint `gorm:"uniqueIndex:idx_host_location" json:"host_id"`
	LocationID uint `gorm:"uniqueIndex:idx_host_location" json:"location_id"`

	Host     *User     `gorm:"foreignKey:host_id" json:"host,omitempty"`
	Location *Location `gorm:"foreignKey:location_id" json:"location,omitempty"`

	types.Timestamps
}
