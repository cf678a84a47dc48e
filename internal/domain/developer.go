package domain

import (
	"time"

	"gorm.io/gorm"
)

// Developer represents a real-estate developer
type Developer struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Logo        string     `json:"logo"`
	Description string     `gorm:"type:text" json:"description"`
	Featured    bool       `gorm:"default:false" json:"featured"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Developer
func (Developer) TableName() string {
	return "developers"
}

// BeforeCreate hook
func (d *Developer) BeforeCreate(tx *gorm.DB) error {
	d.CreatedAt = time.Now()
	return nil
}

// BeforeUpdate hook
func (d *Developer) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	d.UpdatedAt = &now
	return nil
}
