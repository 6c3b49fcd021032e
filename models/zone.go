package models

// Zone is a monitored area inside a greenhouse, belonging to exactly one device.
type Zone struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	TopicName   string `gorm:"type:varchar(255);not null" json:"topic_name"` // default pub/sub channel for the zone
	Description string `gorm:"type:text" json:"description"`
	DeviceID    uint   `gorm:"not null;index" json:"device_id"`

	// Relations
	Device *Device `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
	Topics []Topic `gorm:"foreignKey:ZoneID" json:"topics,omitempty"`
}
