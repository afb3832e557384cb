package comment

import (
	"strings"

	"github.com/juju/errors"
	"github.com/mx-space/blogicum/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Form is the only part of a comment a user submits.
type Form struct {
	Text string `form:"text" json:"text" binding:"required"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Get loads a comment with its author.
func (s *Service) Get(id uint) (*models.CommentModel, error) {
	var cm models.CommentModel
	err := s.db.Preload("Author").First(&cm, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("comment %d", id)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "load comment %d", id)
	}
	return &cm, nil
}

func (s *Service) Create(actor *models.UserModel, postID uint, f *Form) (*models.CommentModel, error) {
	cm := &models.CommentModel{
		Text:     strings.TrimSpace(f.Text),
		AuthorID: actor.ID,
		PostID:   postID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(cm).Error
	})
	if err != nil {
		return nil, errors.Annotatef(err, "create comment on post %d", postID)
	}
	s.log.Info("comment created", zap.Uint("comment_id", cm.ID), zap.Uint("post_id", postID), zap.Uint("author_id", actor.ID))
	return cm, nil
}

func (s *Service) Update(cm *models.CommentModel, f *Form) error {
	text := strings.TrimSpace(f.Text)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.CommentModel{}).Where("id = ?", cm.ID).Update("text", text).Error
	})
	if err != nil {
		return errors.Annotatef(err, "update comment %d", cm.ID)
	}
	cm.Text = text
	s.log.Info("comment updated", zap.Uint("comment_id", cm.ID))
	return nil
}

func (s *Service) Delete(cm *models.CommentModel) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&models.CommentModel{}, cm.ID).Error
	})
	if err != nil {
		return errors.Annotatef(err, "delete comment %d", cm.ID)
	}
	s.log.Info("comment deleted", zap.Uint("comment_id", cm.ID), zap.Uint("post_id", cm.PostID))
	return nil
}
