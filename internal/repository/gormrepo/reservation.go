package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"feastiq/internal/domain"
	"feastiq/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migrate создает или обновляет таблицы сервиса.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Reservation{}, &model.Delivery{}, &model.AdminUser{})
}

type ReservationRepository struct {
	DB *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{DB: db}
}

// Вставка брони; для каждого канала создается ожидающая доставка
func (r *ReservationRepository) CreateReservation(ctx context.Context, res *model.Reservation, channels []string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(res).Error; err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		if len(channels) == 0 {
			return nil
		}

		deliveries := make([]model.Delivery, 0, len(channels))
		for _, ch := range channels {
			deliveries = append(deliveries, model.Delivery{
				ReservationID: res.ID,
				Channel:       ch,
				Status:        model.DeliveryPending,
				NextAttemptAt: res.CreatedAt,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&deliveries).Error; err != nil {
			return fmt.Errorf("enqueue deliveries: %w", err)
		}
		return nil
	})
}

func (r *ReservationRepository) ListReservations(ctx context.Context, order domain.ListOrder) ([]model.Reservation, error) {
	q := r.DB.WithContext(ctx)
	switch order {
	case domain.OrderNewestFirst:
		q = q.Order("created_at DESC").Order("id DESC")
	default:
		q = q.Order("id ASC")
	}

	var reservations []model.Reservation
	if err := q.Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return reservations, nil
}

func (r *ReservationRepository) GetReservation(ctx context.Context, id uint) (*model.Reservation, error) {
	var res model.Reservation
	err := r.DB.WithContext(ctx).First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation %d: %w", id, err)
	}
	return &res, nil
}

func (r *ReservationRepository) DeleteReservation(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reservation_id = ?", id).Delete(&model.Delivery{}).Error; err != nil {
			return fmt.Errorf("delete deliveries of reservation %d: %w", id, err)
		}
		result := tx.Delete(&model.Reservation{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete reservation %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *ReservationRepository) CountReservations(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Reservation{}).Count(&count).Error
	return count, err
}
