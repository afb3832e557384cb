package models

import "time"

// PostModel is a blog post. Author is required; Location and Category are
// nulled when the referenced row goes away.
type PostModel struct {
	Publishable
	Title      string    `json:"title"       gorm:"size:256;not null"`
	Text       string    `json:"text"        gorm:"type:text;not null"`
	PubDate    time.Time `json:"pub_date"    gorm:"not null;index"`
	Image      string    `json:"image"`
	AuthorID   uint      `json:"author_id"   gorm:"not null;index"`
	LocationID *uint     `json:"location_id" gorm:"index"`
	CategoryID *uint     `json:"category_id" gorm:"index"`

	Author   *UserModel     `json:"author,omitempty"   gorm:"foreignKey:AuthorID"`
	Location *LocationModel `json:"location,omitempty" gorm:"foreignKey:LocationID"`
	Category *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Comments []CommentModel `json:"-"                  gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`

	// CommentCount is filled by listing queries only.
	CommentCount int64 `json:"comment_count" gorm:"->;-:migration"`
}

func (PostModel) TableName() string { return "posts" }
