package profile

import (
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/mx-space/blogicum/internal/database"
	"github.com/mx-space/blogicum/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Form holds the editable fields of the actor's own account.
type Form struct {
	FirstName string `form:"first_name" json:"first_name" binding:"max=150"`
	LastName  string `form:"last_name"  json:"last_name"  binding:"max=150"`
	Username  string `form:"username"   json:"username"   binding:"required,username"`
	Email     string `form:"email"      json:"email"      binding:"omitempty,email,max=254"`
}

func FormFor(u *models.UserModel) Form {
	return Form{FirstName: u.FirstName, LastName: u.LastName, Username: u.Username, Email: u.Email}
}

// View is a user profile. Email is only filled for the user themselves.
type View struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email,omitempty"`
	DateJoined time.Time `json:"date_joined"`
	PostCount  int64     `json:"post_count"`
}

func NewView(u *models.UserModel, self bool, postCount int64) View {
	v := View{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   u.FullName(),
		DateJoined: u.CreatedAt,
		PostCount:  postCount,
	}
	if self {
		v.Email = u.Email
	}
	return v
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) GetByUsername(username string) (*models.UserModel, error) {
	var u models.UserModel
	err := s.db.Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("user %q", username)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "load user %q", username)
	}
	return &u, nil
}

// Update writes f onto the actor's own record. A username taken by someone
// else is AlreadyExists.
func (s *Service) Update(actor *models.UserModel, f *Form) error {
	username := strings.TrimSpace(f.Username)
	updates := map[string]interface{}{
		"first_name": strings.TrimSpace(f.FirstName),
		"last_name":  strings.TrimSpace(f.LastName),
		"username":   username,
		"email":      strings.TrimSpace(f.Email),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.UserModel{}).
			Where("username = ? AND id <> ?", username, actor.ID).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return errors.AlreadyExistsf("username %q", username)
		}
		return tx.Model(&models.UserModel{}).Where("id = ?", actor.ID).Updates(updates).Error
	})
	if errors.Is(err, errors.AlreadyExists) {
		return err
	}
	if database.IsDuplicateKey(err) {
		return errors.AlreadyExistsf("username %q", username)
	}
	if err != nil {
		return errors.Annotatef(err, "update user %d", actor.ID)
	}

	if actor.Username != username {
		s.log.Info("username changed", zap.Uint("user_id", actor.ID), zap.String("from", actor.Username), zap.String("to", username))
	}
	actor.FirstName = updates["first_name"].(string)
	actor.LastName = updates["last_name"].(string)
	actor.Username = username
	actor.Email = updates["email"].(string)
	return nil
}
