package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

// User represents a user in the system (site visitors, agents, admins)
type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"not null" json:"name"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword   string     `gorm:"not null" json:"-"`
	Phone            *string    `json:"phone"`
	Avatar           *string    `json:"avatar"`
	Role             string     `gorm:"default:'user';index" json:"role"`
	IsActive         bool       `json:"isActive"`
	ResetToken       *string    `gorm:"index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        *time.Time `json:"updatedAt"`
	LastLogin        *time.Time `json:"lastLogin"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.CreatedAt = time.Now()
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// BeforeUpdate hook
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	u.UpdatedAt = &now
	return nil
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsAgent reports whether the user is an agent or admin
func (u *User) IsAgent() bool {
	return u.Role == RoleAgent || u.Role == RoleAdmin
}

// SplitName splits the single name field into first/last at the
// presentation boundary. The storage schema keeps one field.
func (u *User) SplitName() (first, last string) {
	parts := strings.Fields(u.Name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
