package domain

import (
	"time"

	"gorm.io/gorm"
)

// Blog post status values
const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
)

// BlogPost represents a blog article
type BlogPost struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	Slug      string     `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt   string     `json:"excerpt"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Image     string     `json:"image"`
	Category  string     `gorm:"index" json:"category"`
	Tags      StringList `gorm:"serializer:json" json:"tags"`
	AuthorID  *uint      `gorm:"index" json:"authorId"`
	Author    *User      `gorm:"-" json:"author,omitempty"`
	Status    string     `gorm:"default:'draft';index" json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// TableName specifies the table name for BlogPost
func (BlogPost) TableName() string {
	return "blog_posts"
}

// BeforeCreate hook
func (b *BlogPost) BeforeCreate(tx *gorm.DB) error {
	b.CreatedAt = time.Now()
	if b.Status == "" {
		b.Status = BlogStatusDraft
	}
	return nil
}

// BeforeUpdate hook
func (b *BlogPost) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	b.UpdatedAt = &now
	return nil
}
