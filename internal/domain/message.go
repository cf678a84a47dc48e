package domain

import (
	"time"

	"gorm.io/gorm"
)

// Message represents a general contact form submission (not tied to a
// specific property; see Inquiry for those).
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null;index" json:"email"`
	Phone     *string   `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for Message
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate hook
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	m.CreatedAt = time.Now()
	return nil
}
