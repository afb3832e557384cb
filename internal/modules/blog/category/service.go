package category

import (
	"strings"

	"github.com/juju/errors"
	"github.com/mx-space/blogicum/internal/database"
	"github.com/mx-space/blogicum/internal/models"
	"github.com/mx-space/blogicum/internal/policy"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateCategoryDTO struct {
	Title       string `json:"title"        binding:"required,max=256"`
	Description string `json:"description"  binding:"required"`
	Slug        string `json:"slug"         binding:"required,max=64,slug"`
	IsPublished *bool  `json:"is_published"`
}

type UpdateCategoryDTO struct {
	Title       *string `json:"title"        binding:"omitempty,max=256"`
	Description *string `json:"description"`
	Slug        *string `json:"slug"         binding:"omitempty,max=64,slug"`
	IsPublished *bool   `json:"is_published"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) List() ([]models.CategoryModel, error) {
	var cats []models.CategoryModel
	err := s.db.Order("created_at DESC, id DESC").Find(&cats).Error
	return cats, errors.Annotate(err, "list categories")
}

func (s *Service) GetByID(id uint) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	err := s.db.First(&cat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("category %d", id)
	}
	return &cat, errors.Annotatef(err, "load category %d", id)
}

// GetBrowsable loads a category by slug. Missing and unpublished categories
// are both NotFound.
func (s *Service) GetBrowsable(slug string) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	err := s.db.Where("slug = ?", slug).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("category %q", slug)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "load category %q", slug)
	}
	if !policy.IsCategoryBrowsable(&cat) {
		return nil, errors.NotFoundf("category %q", slug)
	}
	return &cat, nil
}

func (s *Service) Create(dto *CreateCategoryDTO) (*models.CategoryModel, error) {
	cat := models.CategoryModel{
		Title:       strings.TrimSpace(dto.Title),
		Description: dto.Description,
		Slug:        dto.Slug,
	}
	cat.IsPublished = dto.IsPublished == nil || *dto.IsPublished

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&cat).Error
	})
	if database.IsDuplicateKey(err) {
		return nil, errors.AlreadyExistsf("category slug %q", dto.Slug)
	}
	if err != nil {
		return nil, errors.Annotate(err, "create category")
	}
	s.log.Info("category created", zap.Uint("category_id", cat.ID), zap.String("slug", cat.Slug))
	return &cat, nil
}

func (s *Service) Update(id uint, dto *UpdateCategoryDTO) (*models.CategoryModel, error) {
	cat, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = strings.TrimSpace(*dto.Title)
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Slug != nil {
		updates["slug"] = *dto.Slug
	}
	if dto.IsPublished != nil {
		updates["is_published"] = *dto.IsPublished
	}
	if len(updates) == 0 {
		return cat, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(cat).Updates(updates).Error
	})
	if database.IsDuplicateKey(err) {
		return nil, errors.AlreadyExistsf("category slug %q", *dto.Slug)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "update category %d", id)
	}
	return s.GetByID(id)
}

// Delete removes a category. Its posts stay and lose their category.
func (s *Service) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PostModel{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CategoryModel{}, id).Error
	})
	if err != nil {
		return errors.Annotatef(err, "delete category %d", id)
	}
	s.log.Info("category deleted", zap.Uint("category_id", id))
	return nil
}
