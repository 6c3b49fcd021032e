package models

// AccessLevel is the tier of access a user holds on an assigned device.
// Levels are ordered: read < write < control, and a higher level covers
// the lower ones.
type AccessLevel string

const (
	AccessRead    AccessLevel = "read"
	AccessWrite   AccessLevel = "write"
	AccessControl AccessLevel = "control"
)

var accessLevelRank = map[AccessLevel]int{
	AccessRead:    1,
	AccessWrite:   2,
	AccessControl: 3,
}

// ValidAccessLevel reports whether l is a known access level.
func ValidAccessLevel(l AccessLevel) bool {
	_, ok := accessLevelRank[l]
	return ok
}

// Covers reports whether l grants at least the access of other.
func (l AccessLevel) Covers(other AccessLevel) bool {
	return accessLevelRank[l] >= accessLevelRank[other]
}

// DeviceAssignment links a user to a device with a tiered access level.
// At most one assignment exists per (device, user) pair; re-assigning
// updates access_level in place.
type DeviceAssignment struct {
	BaseModel
	DeviceID    uint        `gorm:"not null;uniqueIndex:uix_device_user" json:"device_id"`
	UserID      uint        `gorm:"not null;uniqueIndex:uix_device_user" json:"user_id"`
	AccessLevel AccessLevel `gorm:"type:varchar(20);not null;default:'read'" json:"access_level"`
	AssignedBy  uint        `json:"assigned_by"` // user id of the manager/admin who made the assignment

	// Relations
	Device *Device `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
