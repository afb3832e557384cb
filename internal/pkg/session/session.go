package session

import (
	"errors"
	"strings"
	"time"

	"github.com/mx-space/blogicum/internal/models"
	jwtpkg "github.com/mx-space/blogicum/internal/pkg/jwt"
	"gorm.io/gorm"
)

const DefaultTTL = 30 * 24 * time.Hour

var ErrInactive = errors.New("session expired or revoked")

// Issue creates a DB session and signs a JWT bound to that session.
func Issue(db *gorm.DB, userID uint, ip, ua string, ttl time.Duration) (string, *models.UserSession, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &models.UserSession{
		UserID:    userID,
		IP:        strings.TrimSpace(ip),
		UA:        strings.TrimSpace(ua),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := db.Create(s).Error; err != nil {
		return "", nil, err
	}

	token, err := jwtpkg.Sign(userID, s.ID, ttl)
	if err != nil {
		_ = db.Delete(s).Error
		return "", nil, err
	}
	return token, s, nil
}

// Resolve validates a raw token and returns the user it belongs to.
func Resolve(db *gorm.DB, token string) (*models.UserModel, *jwtpkg.Claims, error) {
	claims, err := jwtpkg.Parse(token)
	if err != nil {
		return nil, nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, err
	}
	active, err := IsActive(db, userID, claims.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if !active {
		return nil, nil, ErrInactive
	}

	var user models.UserModel
	if err := db.First(&user, userID).Error; err != nil {
		return nil, nil, err
	}
	return &user, claims, nil
}

func IsActive(db *gorm.DB, userID uint, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}

	var count int64
	err := db.Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, userID, time.Now().UTC()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func Revoke(db *gorm.DB, userID uint, sessionID string) error {
	now := time.Now().UTC()
	res := db.Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", sessionID, userID).
		Update("revoked_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
