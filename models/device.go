package models

import "time"

// Device represents a greenhouse controller unit owned by a company.
// device_number is unique within a company, not globally.
type Device struct {
	BaseModel
	DeviceNumber string `gorm:"type:varchar(50);not null;uniqueIndex:uix_company_device" json:"device_number"`
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	Description  string `gorm:"type:varchar(255)" json:"description"`
	CompanyID    uint   `gorm:"not null;uniqueIndex:uix_company_device" json:"company_id"`
	// TopicName is the MQTT root the device reports under,
	// generated as company/<company_id>/device/<device_number>.
	TopicName string     `gorm:"type:varchar(255);not null" json:"topic_name"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	IsOnline  bool       `gorm:"default:false" json:"is_online"`
	LastSeen  *time.Time `json:"last_seen"` // maintained by the telemetry ingester, never set by API writes

	// Relations
	Company     *Company           `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Zones       []Zone             `gorm:"foreignKey:DeviceID" json:"zones,omitempty"`
	Assignments []DeviceAssignment `gorm:"foreignKey:DeviceID" json:"assignments,omitempty"`
}
