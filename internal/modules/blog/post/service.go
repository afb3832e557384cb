package post

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/mx-space/blogicum/internal/models"
	"github.com/mx-space/blogicum/internal/pkg/pagination"
	"github.com/mx-space/blogicum/internal/pkg/response"
	"github.com/mx-space/blogicum/internal/pkg/storage"
	"github.com/mx-space/blogicum/internal/policy"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const commentCountSelect = "posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

// Service handles post queries and mutations.
type Service struct {
	db     *gorm.DB
	clock  clock.Clock
	images *storage.Images
	log    *zap.Logger
}

func NewService(db *gorm.DB, clk clock.Clock, images *storage.Images, log *zap.Logger) *Service {
	return &Service{db: db, clock: clk, images: images, log: log}
}

// Now is the reference time of visibility checks.
func (s *Service) Now() time.Time { return s.clock.Now().UTC() }

// DB exposes the handle forms validate against.
func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) ImageURL(key string) string {
	if s.images == nil {
		return ""
	}
	return s.images.URL(key)
}

// listing adds the comment count, relations and newest-first ordering.
func listing(tx *gorm.DB) *gorm.DB {
	return tx.
		Select(commentCountSelect).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Order("posts.pub_date DESC, posts.id DESC")
}

// Index lists every public post.
func (s *Service) Index(q pagination.Query) ([]models.PostModel, response.Pagination, error) {
	tx := policy.PublicPosts(s.db.Model(&models.PostModel{}), s.Now())

	var posts []models.PostModel
	pag, err := pagination.Paginate(tx, q, &posts, listing)
	return posts, pag, err
}

// ByCategory lists public posts of a category. The category itself must
// have been checked for browsability by the caller.
func (s *Service) ByCategory(categoryID uint, q pagination.Query) ([]models.PostModel, response.Pagination, error) {
	tx := policy.PublicPosts(s.db.Model(&models.PostModel{}), s.Now()).
		Where("posts.category_id = ?", categoryID)

	var posts []models.PostModel
	pag, err := pagination.Paginate(tx, q, &posts, listing)
	return posts, pag, err
}

// ByAuthor lists posts of author. The author sees everything they wrote;
// other viewers only the public posts.
func (s *Service) ByAuthor(author, viewer *models.UserModel, q pagination.Query) ([]models.PostModel, response.Pagination, error) {
	tx := s.db.Model(&models.PostModel{}).Where("posts.author_id = ?", author.ID)
	if viewer == nil || viewer.ID != author.ID {
		tx = policy.PublicPosts(tx, s.Now())
	}

	var posts []models.PostModel
	pag, err := pagination.Paginate(tx, q, &posts, listing)
	return posts, pag, err
}

// Get loads a post with its relations and comment count.
func (s *Service) Get(id uint) (*models.PostModel, error) {
	var p models.PostModel
	err := s.db.
		Select(commentCountSelect).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("post %d", id)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "load post %d", id)
	}
	return &p, nil
}

// Comments returns the thread of a post oldest first.
func (s *Service) Comments(postID uint) ([]models.CommentModel, error) {
	var comments []models.CommentModel
	err := s.db.
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, errors.Annotatef(err, "load comments of post %d", postID)
}

// Create writes a new post authored by actor.
func (s *Service) Create(ctx context.Context, actor *models.UserModel, in *Input) (*models.PostModel, error) {
	p := &models.PostModel{
		Title:      in.Title,
		Text:       in.Text,
		PubDate:    in.PubDate.UTC(),
		AuthorID:   actor.ID,
		LocationID: in.LocationID,
		CategoryID: in.CategoryID,
	}
	p.IsPublished = in.IsPublished

	if in.Image != nil {
		key, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		p.Image = key
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(p).Error
	})
	if err != nil {
		s.discardImage(ctx, p.Image)
		return nil, errors.Annotate(err, "create post")
	}

	s.log.Info("post created", zap.Uint("post_id", p.ID), zap.Uint("author_id", actor.ID))
	return p, nil
}

// Update replaces every editable field of p with in.
func (s *Service) Update(ctx context.Context, p *models.PostModel, in *Input) error {
	oldImage := p.Image
	newImage := oldImage
	switch {
	case in.Image != nil:
		key, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return err
		}
		newImage = key
	case in.ImageClear:
		newImage = ""
	}

	updates := map[string]interface{}{
		"title":        in.Title,
		"text":         in.Text,
		"pub_date":     in.PubDate.UTC(),
		"location_id":  in.LocationID,
		"category_id":  in.CategoryID,
		"is_published": in.IsPublished,
		"image":        newImage,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.PostModel{}).Where("id = ?", p.ID).Updates(updates).Error
	})
	if err != nil {
		if newImage != oldImage {
			s.discardImage(ctx, newImage)
		}
		return errors.Annotatef(err, "update post %d", p.ID)
	}
	if newImage != oldImage {
		s.discardImage(ctx, oldImage)
	}

	p.Title, p.Text, p.PubDate = in.Title, in.Text, in.PubDate.UTC()
	p.LocationID, p.CategoryID = in.LocationID, in.CategoryID
	p.IsPublished, p.Image = in.IsPublished, newImage

	s.log.Info("post updated", zap.Uint("post_id", p.ID))
	return nil
}

// Delete removes p and its comments.
func (s *Service) Delete(ctx context.Context, p *models.PostModel) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", p.ID).Delete(&models.CommentModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PostModel{}, p.ID).Error
	})
	if err != nil {
		return errors.Annotatef(err, "delete post %d", p.ID)
	}
	s.discardImage(ctx, p.Image)

	s.log.Info("post deleted", zap.Uint("post_id", p.ID))
	return nil
}

// Choices returns the categories and locations a post form may reference.
func (s *Service) Choices() (map[string]interface{}, error) {
	var categories []models.CategoryModel
	if err := s.db.Order("title ASC").Find(&categories).Error; err != nil {
		return nil, errors.Annotate(err, "load categories")
	}
	var locations []models.LocationModel
	if err := s.db.Order("name ASC").Find(&locations).Error; err != nil {
		return nil, errors.Annotate(err, "load locations")
	}

	cats := make([]CategoryView, len(categories))
	for i, c := range categories {
		cats[i] = CategoryView{ID: c.ID, Title: c.Title, Slug: c.Slug}
	}
	locs := make([]LocationView, len(locations))
	for i, l := range locations {
		locs[i] = LocationView{ID: l.ID, Name: l.Name}
	}
	return map[string]interface{}{"categories": cats, "locations": locs}, nil
}

func (s *Service) saveImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if s.images == nil {
		return "", errors.NotValidf("image uploads")
	}
	return s.images.Save(ctx, fh)
}

func (s *Service) discardImage(ctx context.Context, key string) {
	if key == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.Warn("image cleanup failed", zap.String("key", key), zap.Error(err))
	}
}
