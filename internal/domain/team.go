package domain

import (
	"time"

	"gorm.io/gorm"
)

// TeamMember represents a member of the agency team. The stored
// `position` column surfaces as `role` in API responses.
type TeamMember struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	Position  string     `gorm:"not null" json:"position"`
	Photo     string     `json:"photo"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	Languages StringList `gorm:"serializer:json" json:"languages"`
	Order     int        `gorm:"column:display_order;default:0" json:"order"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// TableName specifies the table name for TeamMember
func (TeamMember) TableName() string {
	return "team_members"
}

// BeforeCreate hook
func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	m.CreatedAt = time.Now()
	return nil
}

// BeforeUpdate hook
func (m *TeamMember) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	m.UpdatedAt = &now
	return nil
}
