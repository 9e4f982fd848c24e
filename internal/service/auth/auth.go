// Package auth проверяет учетные данные администратора: общий пароль из конфигурации
// или персональную учетную запись с bcrypt-хэшем.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"feastiq/internal/domain"
	"feastiq/internal/model"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SharedPrincipal - имя, под которым в логах виден вход по общему паролю.
const SharedPrincipal = "admin"

const minPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

type Authenticator struct {
	repo         domain.AdminRepo
	sharedSecret string
	logger       *zap.Logger
	now          func() time.Time
}

func NewAuthenticator(repo domain.AdminRepo, sharedSecret string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		repo:         repo,
		sharedSecret: sharedSecret,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Authenticate возвращает имя администратора при совпадении пароля.
// Пустой username - проверка общего пароля.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		if a.sharedSecret == "" || password == "" {
			return "", ErrInvalidCredentials
		}
		if subtle.ConstantTimeCompare([]byte(password), []byte(a.sharedSecret)) != 1 {
			return "", ErrInvalidCredentials
		}
		return SharedPrincipal, nil
	}

	if a.repo == nil {
		return "", ErrInvalidCredentials
	}
	admin, err := a.repo.GetAdminByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	if err := a.repo.TouchAdminLogin(ctx, admin.ID, a.now()); err != nil {
		a.logger.Warn("error updating last login", zap.String("username", username), zap.Error(err))
	}
	return admin.Username, nil
}

// AddAdmin создает персональную учетную запись.
func (a *Authenticator) AddAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return a.repo.CreateAdmin(ctx, &model.AdminUser{Username: username, PasswordHash: hash})
}

// SetPassword меняет пароль существующей учетной записи.
func (a *Authenticator) SetPassword(ctx context.Context, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return a.repo.UpdateAdminPassword(ctx, strings.TrimSpace(username), hash)
}

func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
