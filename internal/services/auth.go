package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jrprasath/paperhouse-backend/internal/logger"
	pkgerrors "github.com/jrprasath/paperhouse-backend/internal/pkg/errors"
)

// AuthService authenticates the site administrator. The admin account is
// configured, not stored: a single email plus bcrypt hash from the
// environment is all a promo site needs.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, expiresIn int64, err error)
	VerifyToken(tokenString string) (actorID string, err error)
}

type AuthConfig struct {
	AdminEmail        string
	AdminPasswordHash string
	JWTSecretKey      string
	AccessTTL         time.Duration
}

type authService struct {
	log *logger.Logger
	cfg AuthConfig
}

func NewAuthService(log *logger.Logger, cfg AuthConfig) (AuthService, error) {
	if strings.TrimSpace(cfg.AdminEmail) == "" {
		return nil, fmt.Errorf("missing ADMIN_EMAIL")
	}
	if strings.TrimSpace(cfg.AdminPasswordHash) == "" {
		return nil, fmt.Errorf("missing ADMIN_PASSWORD_HASH")
	}
	if strings.TrimSpace(cfg.JWTSecretKey) == "" {
		return nil, fmt.Errorf("missing JWT_SECRET_KEY")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	return &authService{log: log.With("service", "AuthService"), cfg: cfg}, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, int64, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email != strings.ToLower(as.cfg.AdminEmail) {
		as.log.Debug("Login attempt for unknown account", "email", email)
		return "", 0, fmt.Errorf("%w: invalid credentials", pkgerrors.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(as.cfg.AdminPasswordHash), []byte(password)); err != nil {
		as.log.Debug("Login attempt with wrong password", "email", email)
		return "", 0, fmt.Errorf("%w: invalid credentials", pkgerrors.ErrUnauthorized)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   as.cfg.AdminEmail,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.cfg.AccessTTL)),
		Issuer:    "paperhouse-backend",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.cfg.JWTSecretKey))
	if err != nil {
		return "", 0, fmt.Errorf("sign token: %w", err)
	}
	return signed, int64(as.cfg.AccessTTL.Seconds()), nil
}

func (as *authService) VerifyToken(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.cfg.JWTSecretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", pkgerrors.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: invalid token claims", pkgerrors.ErrUnauthorized)
	}
	return claims.Subject, nil
}
