package models

import "time"

// Base is embedded by every blog entity. IDs are auto-increment integers so
// they can appear directly in URL paths.
type Base struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// Publishable adds the publish flag shared by Location, Category and Post.
type Publishable struct {
	Base
	IsPublished bool `json:"is_published" gorm:"not null;index"`
}

// NameLength bounds short text columns (titles, names).
const NameLength = 256
