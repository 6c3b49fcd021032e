package models

// Company is the tenant root: every user and device belongs to exactly one company.
type Company struct {
	BaseModel
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	Code       string `gorm:"type:varchar(20);unique;not null" json:"code"` // short tenant code, e.g. "GH001"
	Email      string `gorm:"type:varchar(100)" json:"email"`
	Phone      string `gorm:"type:varchar(20)" json:"phone"`
	Address    string `gorm:"type:varchar(200)" json:"address"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`
	MaxDevices int    `gorm:"default:10" json:"max_devices"`

	// Relations
	Users   []User   `gorm:"foreignKey:CompanyID" json:"users,omitempty"`
	Devices []Device `gorm:"foreignKey:CompanyID" json:"devices,omitempty"`
}
