package models

// TopicDirection tells whether the backend publishes to, subscribes to,
// or both publishes and subscribes on a topic path.
type TopicDirection string

const (
	DirectionPublish   TopicDirection = "publish"
	DirectionSubscribe TopicDirection = "subscribe"
	DirectionBoth      TopicDirection = "both"
)

// ValidTopicDirection reports whether d is a known direction.
func ValidTopicDirection(d TopicDirection) bool {
	return d == DirectionPublish || d == DirectionSubscribe || d == DirectionBoth
}

// Topic is a concrete MQTT channel under a zone. topic_path is unique per zone.
type Topic struct {
	BaseModel
	ZoneID      uint           `gorm:"not null;uniqueIndex:uix_zone_topic" json:"zone_id"`
	TopicPath   string         `gorm:"type:varchar(500);not null;uniqueIndex:uix_zone_topic" json:"topic_path"`
	Direction   TopicDirection `gorm:"type:varchar(20);not null;default:'subscribe'" json:"direction"`
	Description string         `gorm:"type:text" json:"description"`
	QoS         int            `gorm:"column:qos;not null;default:1" json:"qos"` // 0, 1 or 2
	IsActive    bool           `gorm:"default:true" json:"is_active"`

	// Relations
	Zone *Zone `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
}
