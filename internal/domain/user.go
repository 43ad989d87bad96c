package domain

import (
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string `gorm:"primaryKey;size:36" json:"id" form:"id"`
	Name         string `json:"name" form:"name"`
	Email        string `gorm:"uniqueIndex;size:191" json:"email" form:"email"`
	Password     string `json:"-"`
	Role         string `gorm:"size:16;default:USER" json:"role" form:"role"`
	PhoneNumber  string `gorm:"size:32" json:"phone_number" form:"phone_number"`
	ProfileImage string `json:"profile_image" form:"profile_image"`
	Active       bool   `gorm:"default:true" json:"active"`

	PasswordChangedAt    *time.Time `json:"-"`
	PasswordResetToken   string     `gorm:"index;size:64" json:"-"`
	PasswordResetExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PasswordChangedAfter reports whether the password was changed after the
// given token-issued-at instant; such tokens must be rejected.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}

type Address struct {
	ID         string `gorm:"primaryKey;size:36" json:"id" form:"id"`
	UserId     string `gorm:"index;size:36" json:"user_id"`
	Label      string `gorm:"size:64" json:"label" form:"label"`
	Street     string `json:"street" form:"street"`
	City       string `gorm:"size:128" json:"city" form:"city"`
	State      string `gorm:"size:128" json:"state" form:"state"`
	PostalCode string `gorm:"size:32" json:"postal_code" form:"postal_code"`
	Country    string `gorm:"size:128" json:"country" form:"country"`
	IsDefault  bool   `json:"is_default" form:"is_default"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Address) TableName() string {
	return "addresses"
}
