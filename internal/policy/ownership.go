package policy

import "github.com/mx-space/blogicum/internal/models"

// CanModifyPost reports whether actor is the author of post.
func CanModifyPost(post *models.PostModel, actor *models.UserModel) bool {
	return post != nil && actor != nil && post.AuthorID == actor.ID
}

// CanModifyComment reports whether actor is the author of comment.
func CanModifyComment(comment *models.CommentModel, actor *models.UserModel) bool {
	return comment != nil && actor != nil && comment.AuthorID == actor.ID
}
