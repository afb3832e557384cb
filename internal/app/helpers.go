package app

import (
	"errors"
	"strings"

	"github.com/mx-space/blogicum/internal/config"
	jwtpkg "github.com/mx-space/blogicum/internal/pkg/jwt"
	"github.com/mx-space/blogicum/internal/pkg/validate"
	"go.uber.org/zap"
)

var errMissingJWTSecret = errors.New("jwt_secret is required outside development")

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) error {
	secret := strings.TrimSpace(cfg.JWTSecret)
	switch {
	case secret != "":
		jwtpkg.SetSecret(secret)
	case !cfg.IsDev():
		return errMissingJWTSecret
	default:
		logger.Warn("jwt_secret is empty, using built-in development secret")
	}
	validate.Register()
	return nil
}
