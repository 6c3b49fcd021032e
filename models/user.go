package models

import (
	"gorm.io/gorm"
)

// Role determines what a user may see and change.
type Role string

const (
	RoleAdmin   Role = "admin"   // cross-company scope, attached to a home company for record-keeping
	RoleManager Role = "manager" // manages users/devices/zones inside their own company
	RoleUser    Role = "user"    // read-only, limited to devices assigned to them
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleManager || r == RoleUser
}

// User represents an account that can log in and operate on greenhouse devices.
type User struct {
	BaseModel
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	Email     string `gorm:"type:varchar(100);unique;not null" json:"email"`
	Password  string `gorm:"type:varchar(100);not null" json:"-"` // bcrypt hash, never exposed in JSON
	CompanyID uint   `gorm:"not null;index" json:"company_id"`
	Role      Role   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`

	// Relations
	Company     *Company           `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Assignments []DeviceAssignment `gorm:"foreignKey:UserID" json:"assignments,omitempty"`
}

// BeforeSave hashes the password when a plain-text one was provided.
// bcrypt hashes are always 60 bytes, anything shorter cannot be one.
// Runs on create and update alike.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Password != "" && len(u.Password) < 60 {
		hashed, err := HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.Password = hashed
	}
	return nil
}
