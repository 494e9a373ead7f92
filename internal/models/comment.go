// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on an ad. Both the author and the parent ad
// are set at creation and immutable afterwards; comments are only reachable
// through their parent ad.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Text      string         `gorm:"not null" json:"text"`
	AuthorID  uint           `gorm:"not null" json:"author_id"`
	AdID      uint           `gorm:"not null;index" json:"ad_id"`
	Author    User           `gorm:"foreignKey:AuthorID" json:"author"`
	Ad        Ad             `gorm:"foreignKey:AdID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
