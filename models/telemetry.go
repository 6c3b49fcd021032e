package models

import "time"

// Telemetry is one reading reported by a device over MQTT.
// Rows are append-only; the ingester is the single writer.
type Telemetry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DeviceID   uint      `gorm:"not null;index" json:"device_id"`
	Metric     string    `gorm:"type:varchar(100);not null" json:"metric"` // e.g. temperature, humidity
	Value      string    `gorm:"type:varchar(100)" json:"value"`
	RecordedAt time.Time `gorm:"index" json:"recorded_at"`

	// Relations
	Device *Device `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
}
