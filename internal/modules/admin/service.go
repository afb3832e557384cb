// Package admin is the staff tooling: categories, locations, post
// moderation and account removal.
package admin

import (
	"strings"

	"github.com/juju/errors"
	"github.com/mx-space/blogicum/internal/models"
	"github.com/mx-space/blogicum/internal/pkg/pagination"
	"github.com/mx-space/blogicum/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateLocationDTO struct {
	Name        string `json:"name"         binding:"required,max=256"`
	IsPublished *bool  `json:"is_published"`
}

type UpdateLocationDTO struct {
	Name        *string `json:"name"         binding:"omitempty,max=256"`
	IsPublished *bool   `json:"is_published"`
}

type ModeratePostDTO struct {
	IsPublished *bool `json:"is_published" binding:"required"`
}

// PostFilter narrows the moderation list.
type PostFilter struct {
	Query    string `form:"q"`
	Category *uint  `form:"category"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) ListLocations() ([]models.LocationModel, error) {
	var locs []models.LocationModel
	err := s.db.Order("created_at DESC, id DESC").Find(&locs).Error
	return locs, errors.Annotate(err, "list locations")
}

func (s *Service) GetLocation(id uint) (*models.LocationModel, error) {
	var loc models.LocationModel
	err := s.db.First(&loc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("location %d", id)
	}
	return &loc, errors.Annotatef(err, "load location %d", id)
}

func (s *Service) CreateLocation(dto *CreateLocationDTO) (*models.LocationModel, error) {
	loc := models.LocationModel{Name: strings.TrimSpace(dto.Name)}
	loc.IsPublished = dto.IsPublished == nil || *dto.IsPublished
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&loc).Error
	})
	if err != nil {
		return nil, errors.Annotate(err, "create location")
	}
	s.log.Info("location created", zap.Uint("location_id", loc.ID))
	return &loc, nil
}

func (s *Service) UpdateLocation(id uint, dto *UpdateLocationDTO) (*models.LocationModel, error) {
	loc, err := s.GetLocation(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.IsPublished != nil {
		updates["is_published"] = *dto.IsPublished
	}
	if len(updates) == 0 {
		return loc, nil
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(loc).Updates(updates).Error
	})
	if err != nil {
		return nil, errors.Annotatef(err, "update location %d", id)
	}
	return s.GetLocation(id)
}

// DeleteLocation removes a location. Its posts stay and lose the location.
func (s *Service) DeleteLocation(id uint) error {
	if _, err := s.GetLocation(id); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PostModel{}).Where("location_id = ?", id).Update("location_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.LocationModel{}, id).Error
	})
	if err != nil {
		return errors.Annotatef(err, "delete location %d", id)
	}
	s.log.Info("location deleted", zap.Uint("location_id", id))
	return nil
}

// ListPosts returns every post regardless of visibility, newest first.
func (s *Service) ListPosts(q pagination.Query, f PostFilter) ([]models.PostModel, response.Pagination, error) {
	tx := s.db.Model(&models.PostModel{})
	if term := strings.TrimSpace(f.Query); term != "" {
		tx = tx.Where("LOWER(posts.title) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	if f.Category != nil {
		tx = tx.Where("posts.category_id = ?", *f.Category)
	}

	var posts []models.PostModel
	pag, err := pagination.Paginate(tx, q, &posts, func(tx *gorm.DB) *gorm.DB {
		return tx.
			Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count").
			Preload("Author").
			Preload("Category").
			Preload("Location").
			Order("posts.created_at DESC, posts.id DESC")
	})
	return posts, pag, err
}

// SetPostPublished toggles the publish flag of a post.
func (s *Service) SetPostPublished(id uint, published bool) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PostModel{}).Where("id = ?", id).Update("is_published", published)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.PostModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return errors.NotFoundf("post %d", id)
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errors.NotFound) {
		return errors.Annotatef(err, "moderate post %d", id)
	}
	if err == nil {
		s.log.Info("post moderated", zap.Uint("post_id", id), zap.Bool("is_published", published))
	}
	return err
}

// DeleteUser removes an account with its posts, the comments under those
// posts, its own comments and its sessions.
func (s *Service) DeleteUser(username string) error {
	var u models.UserModel
	err := s.db.Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFoundf("user %q", username)
	}
	if err != nil {
		return errors.Annotatef(err, "load user %q", username)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ownPosts := tx.Model(&models.PostModel{}).Select("id").Where("author_id = ?", u.ID)
		if err := tx.Where("post_id IN (?) OR author_id = ?", ownPosts, u.ID).Delete(&models.CommentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", u.ID).Delete(&models.PostModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", u.ID).Delete(&models.UserSession{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.UserModel{}, u.ID).Error
	})
	if err != nil {
		return errors.Annotatef(err, "delete user %q", username)
	}
	s.log.Info("user deleted", zap.Uint("user_id", u.ID), zap.String("username", username))
	return nil
}
