package models

// CommentModel is a reply under a post, ordered chronologically.
type CommentModel struct {
	Base
	Text     string `json:"text"      gorm:"type:text;not null"`
	AuthorID uint   `json:"author_id" gorm:"not null;index"`
	PostID   uint   `json:"post_id"   gorm:"not null;index"`

	Author *UserModel `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Post   *PostModel `json:"-"                gorm:"foreignKey:PostID"`
}

func (CommentModel) TableName() string { return "comments" }
