// Package policy holds the pure access rules of the blog: who may see a post
// and who may change a post or comment.
package policy

import (
	"time"

	"github.com/mx-space/blogicum/internal/models"
	"gorm.io/gorm"
)

// IsPostPublic reports whether post is visible to everyone at now. A post
// without a category is never public.
func IsPostPublic(post *models.PostModel, now time.Time) bool {
	if post == nil || !post.IsPublished {
		return false
	}
	if post.Category == nil || !post.Category.IsPublished {
		return false
	}
	return !post.PubDate.After(now)
}

// IsPostVisible reports whether viewer may see post. Authors always see
// their own posts; viewer is nil for anonymous requests.
func IsPostVisible(post *models.PostModel, viewer *models.UserModel, now time.Time) bool {
	if post == nil {
		return false
	}
	if viewer != nil && viewer.ID == post.AuthorID {
		return true
	}
	return IsPostPublic(post, now)
}

// IsCategoryBrowsable reports whether the category listing may be shown.
func IsCategoryBrowsable(category *models.CategoryModel) bool {
	return category != nil && category.IsPublished
}

// PublicPosts narrows a posts query to the rows IsPostPublic accepts. The
// query must select from the posts table.
func PublicPosts(tx *gorm.DB, now time.Time) *gorm.DB {
	return tx.
		Joins("JOIN categories ON categories.id = posts.category_id").
		Where("posts.is_published = ? AND categories.is_published = ? AND posts.pub_date <= ?", true, true, now)
}
