package domain

import (
	"time"

	"gorm.io/gorm"
)

// Inquiry status values
const (
	InquiryStatusNew        = "new"
	InquiryStatusInProgress = "in-progress"
	InquiryStatusResolved   = "resolved"
)

// Inquiry represents a buyer/renter inquiry about a property
type Inquiry struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	PropertyID uint       `gorm:"not null;index" json:"propertyId"`
	Property   *Property  `gorm:"-" json:"property,omitempty"`
	UserID     *uint      `gorm:"index" json:"userId"`
	Name       string     `gorm:"not null" json:"name"`
	Email      string     `gorm:"not null;index" json:"email"`
	Phone      *string    `json:"phone"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	Status     string     `gorm:"default:'new';index" json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Inquiry
func (Inquiry) TableName() string {
	return "inquiries"
}

// BeforeCreate hook
func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	i.CreatedAt = time.Now()
	if i.Status == "" {
		i.Status = InquiryStatusNew
	}
	return nil
}

// BeforeUpdate hook
func (i *Inquiry) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	i.UpdatedAt = &now
	return nil
}

// OffplanInquiry represents an inquiry about an off-plan development.
// It carries preferred language and mortgage interest on top of the
// regular inquiry contact fields.
type OffplanInquiry struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	PropertyID           uint       `gorm:"not null;index" json:"propertyId"`
	Property             *Property  `gorm:"-" json:"property,omitempty"`
	Name                 string     `gorm:"not null" json:"name"`
	Email                string     `gorm:"not null;index" json:"email"`
	Phone                *string    `json:"phone"`
	Message              string     `gorm:"type:text" json:"message"`
	PreferredLanguage    string     `gorm:"default:'english'" json:"preferredLanguage"`
	InterestedInMortgage bool       `gorm:"default:false" json:"interestedInMortgage"`
	Status               string     `gorm:"default:'new';index" json:"status"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            *time.Time `json:"updatedAt"`
}

// TableName specifies the table name for OffplanInquiry
func (OffplanInquiry) TableName() string {
	return "offplan_inquiries"
}

// BeforeCreate hook
func (o *OffplanInquiry) BeforeCreate(tx *gorm.DB) error {
	o.CreatedAt = time.Now()
	if o.Status == "" {
		o.Status = InquiryStatusNew
	}
	if o.PreferredLanguage == "" {
		o.PreferredLanguage = "english"
	}
	return nil
}

// BeforeUpdate hook
func (o *OffplanInquiry) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	o.UpdatedAt = &now
	return nil
}
