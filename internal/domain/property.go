package domain

import (
	"time"

	"gorm.io/gorm"
)

// Property status values
const (
	PropertyStatusForSale = "for-sale"
	PropertyStatusForRent = "for-rent"
	PropertyStatusSold    = "sold"
	PropertyStatusRented  = "rented"
)

// Property represents a property listing (regular or off-plan)
type Property struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"not null;index" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Price        float64    `gorm:"not null;index" json:"price"`
	Location     string     `gorm:"index" json:"location"`
	Address      string     `json:"address"`
	City         string     `gorm:"index" json:"city"`
	PropertyType string     `gorm:"index" json:"propertyType"`
	Status       string     `gorm:"default:'for-sale';index" json:"status"`
	IsOffplan    bool       `gorm:"default:false;index" json:"isOffplan"`
	Bedrooms     int        `json:"bedrooms"`
	Bathrooms    int        `json:"bathrooms"`
	Area         float64    `json:"area"`
	YearBuilt    int        `json:"yearBuilt"`
	MainImage    string     `gorm:"not null" json:"mainImage"`
	Images       StringList `gorm:"serializer:json" json:"images"`
	Features     StringList `gorm:"serializer:json" json:"features"`
	Featured     bool       `gorm:"default:false;index" json:"featured"`
	IsPublished  bool       `json:"isPublished"`

	// Off-plan specifics
	PaymentPlan  string `json:"paymentPlan,omitempty"`
	HandoverYear int    `json:"handoverYear,omitempty"`

	DeveloperID *uint      `gorm:"index" json:"developerId"`
	Developer   *Developer `gorm:"-" json:"developer,omitempty"`
	AgentID     *uint      `gorm:"index" json:"agentId"`
	Agent       *User      `gorm:"-" json:"agent,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Property
func (Property) TableName() string {
	return "properties"
}

// BeforeCreate hook
func (p *Property) BeforeCreate(tx *gorm.DB) error {
	p.CreatedAt = time.Now()
	if p.Status == "" {
		p.Status = PropertyStatusForSale
	}
	return nil
}

// BeforeUpdate hook
func (p *Property) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	p.UpdatedAt = &now
	return nil
}
