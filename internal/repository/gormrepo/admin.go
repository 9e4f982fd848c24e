package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feastiq/internal/domain"
	"feastiq/internal/model"

	"gorm.io/gorm"
)

type AdminRepository struct {
	DB *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{DB: db}
}

func (r *AdminRepository) CreateAdmin(ctx context.Context, admin *model.AdminUser) error {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.AdminUser{}).
		Where("username = ?", admin.Username).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check admin %q: %w", admin.Username, err)
	}
	if count > 0 {
		return domain.ErrAlreadyExists
	}
	if err := r.DB.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("insert admin %q: %w", admin.Username, err)
	}
	return nil
}

func (r *AdminRepository) GetAdminByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	var admin model.AdminUser
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin %q: %w", username, err)
	}
	return &admin, nil
}

func (r *AdminRepository) UpdateAdminPassword(ctx context.Context, username, passwordHash string) error {
	result := r.DB.WithContext(ctx).Model(&model.AdminUser{}).
		Where("username = ?", username).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("update password of %q: %w", username, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AdminRepository) TouchAdminLogin(ctx context.Context, id uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.AdminUser{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *AdminRepository) ListAdmins(ctx context.Context) ([]model.AdminUser, error) {
	var admins []model.AdminUser
	if err := r.DB.WithContext(ctx).Order("username ASC").Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}
