package domain

import (
	"time"

	"gorm.io/gorm"
)

// Testimonial represents a customer testimonial. The stored `content`
// column surfaces as `quote` in API responses; the converter in the
// testimonial service owns that translation.
type Testimonial struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	Role      string     `json:"role"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Rating    int        `gorm:"default:5" json:"rating"`
	Photo     string     `json:"photo"`
	Approved  bool       `gorm:"default:false;index" json:"approved"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Testimonial
func (Testimonial) TableName() string {
	return "testimonials"
}

// BeforeCreate hook
func (t *Testimonial) BeforeCreate(tx *gorm.DB) error {
	t.CreatedAt = time.Now()
	if t.Rating == 0 {
		t.Rating = 5
	}
	return nil
}

// BeforeUpdate hook
func (t *Testimonial) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	t.UpdatedAt = &now
	return nil
}
