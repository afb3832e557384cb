// Package auth signs users up, in and out. Signed-in requests carry a JWT
// bound to a user_sessions row, so logging out revokes the token.
package auth

import (
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/mx-space/blogicum/internal/database"
	"github.com/mx-space/blogicum/internal/models"
	sessionpkg "github.com/mx-space/blogicum/internal/pkg/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// errBadCredentials covers both unknown usernames and wrong passwords.
var errBadCredentials = errors.Unauthorizedf("username or password")

// dummyHash is compared against when the username is unknown so both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("blogicum"), bcrypt.MinCost)

type RegisterDTO struct {
	Username  string `form:"username"   json:"username"   binding:"required,username"`
	FirstName string `form:"first_name" json:"first_name" binding:"max=150"`
	LastName  string `form:"last_name"  json:"last_name"  binding:"max=150"`
	Email     string `form:"email"      json:"email"      binding:"omitempty,email,max=254"`
	Password1 string `form:"password1"  json:"password1"  binding:"required,min=8"`
	Password2 string `form:"password2"  json:"password2"  binding:"required,eqfield=Password1"`
}

type LoginDTO struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Next     string `form:"next"     json:"next"`
}

type Service struct {
	db         *gorm.DB
	sessionTTL time.Duration
	log        *zap.Logger
}

func NewService(db *gorm.DB, sessionTTL time.Duration, log *zap.Logger) *Service {
	return &Service{db: db, sessionTTL: sessionTTL, log: log}
}

func (s *Service) Register(dto *RegisterDTO) (*models.UserModel, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Annotate(err, "hash password")
	}
	u := models.UserModel{
		Username:  strings.TrimSpace(dto.Username),
		FirstName: strings.TrimSpace(dto.FirstName),
		LastName:  strings.TrimSpace(dto.LastName),
		Email:     strings.TrimSpace(dto.Email),
		Password:  string(hash),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.UserModel{}).Where("username = ?", u.Username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return errors.AlreadyExistsf("username %q", u.Username)
		}
		return tx.Create(&u).Error
	})
	switch {
	case errors.Is(err, errors.AlreadyExists):
		return nil, err
	case database.IsDuplicateKey(err):
		return nil, errors.AlreadyExistsf("username %q", u.Username)
	case err != nil:
		return nil, errors.Annotate(err, "create user")
	}
	s.log.Info("user registered", zap.Uint("user_id", u.ID), zap.String("username", u.Username))
	return &u, nil
}

// Login checks the credentials and opens a session.
func (s *Service) Login(username, password, ip, ua string) (string, *models.UserModel, error) {
	var u models.UserModel
	err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", nil, errBadCredentials
	}
	if err != nil {
		return "", nil, errors.Annotate(err, "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, errBadCredentials
	}

	token, _, err := sessionpkg.Issue(s.db, u.ID, ip, ua, s.sessionTTL)
	if err != nil {
		return "", nil, errors.Annotate(err, "issue session")
	}
	s.log.Info("user logged in", zap.Uint("user_id", u.ID))
	return token, &u, nil
}

func (s *Service) Logout(userID uint, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	err := sessionpkg.Revoke(s.db, userID, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return errors.Annotate(err, "revoke session")
}

// Promote marks an existing user as staff.
func (s *Service) Promote(username string) error {
	res := s.db.Model(&models.UserModel{}).Where("username = ?", username).Update("is_staff", true)
	if res.Error != nil {
		return errors.Annotatef(res.Error, "promote %q", username)
	}
	if res.RowsAffected == 0 {
		return errors.NotFoundf("user %q", username)
	}
	s.log.Info("user promoted to staff", zap.String("username", username))
	return nil
}
