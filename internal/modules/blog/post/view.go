package post

import (
	"time"

	"github.com/mx-space/blogicum/internal/models"
	"github.com/mx-space/blogicum/internal/pkg/markdown"
)

// AuthorView is the public part of a user shown next to posts and comments.
type AuthorView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type CategoryView struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type LocationView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// View is the response shape of a post.
type View struct {
	ID           uint          `json:"id"`
	Title        string        `json:"title"`
	Text         string        `json:"text"`
	TextHTML     string        `json:"text_html"`
	PubDate      time.Time     `json:"pub_date"`
	CreatedAt    time.Time     `json:"created_at"`
	IsPublished  bool          `json:"is_published"`
	Image        string        `json:"image"`
	Author       *AuthorView   `json:"author"`
	Category     *CategoryView `json:"category"`
	Location     *LocationView `json:"location"`
	CommentCount int64         `json:"comment_count"`
}

type CommentView struct {
	ID        uint        `json:"id"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"created_at"`
	PostID    uint        `json:"post_id"`
	Author    *AuthorView `json:"author"`
}

func NewAuthorView(u *models.UserModel) *AuthorView {
	if u == nil {
		return nil
	}
	return &AuthorView{ID: u.ID, Username: u.Username, FullName: u.FullName()}
}

// View renders p. Unpublished categories and locations are still reported
// so authors can see what they picked.
func (s *Service) View(p *models.PostModel) View {
	v := View{
		ID:           p.ID,
		Title:        p.Title,
		Text:         p.Text,
		TextHTML:     markdown.Render(p.Text),
		PubDate:      p.PubDate,
		CreatedAt:    p.CreatedAt,
		IsPublished:  p.IsPublished,
		Image:        s.ImageURL(p.Image),
		Author:       NewAuthorView(p.Author),
		CommentCount: p.CommentCount,
	}
	if p.Category != nil {
		v.Category = &CategoryView{ID: p.Category.ID, Title: p.Category.Title, Slug: p.Category.Slug}
	}
	if p.Location != nil {
		v.Location = &LocationView{ID: p.Location.ID, Name: p.Location.Name}
	}
	return v
}

func (s *Service) Views(posts []models.PostModel) []View {
	out := make([]View, len(posts))
	for i := range posts {
		out[i] = s.View(&posts[i])
	}
	return out
}

func NewCommentView(cm *models.CommentModel) CommentView {
	return CommentView{
		ID:        cm.ID,
		Text:      cm.Text,
		CreatedAt: cm.CreatedAt,
		PostID:    cm.PostID,
		Author:    NewAuthorView(cm.Author),
	}
}
