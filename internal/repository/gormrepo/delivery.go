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

// Получение ожидающих доставок, у которых наступил срок следующей попытки.
// Страницы идут по возрастанию id, начиная после afterID.
func (r *ReservationRepository) DueDeliveries(ctx context.Context, now time.Time, afterID uint, limit int) ([]model.Delivery, error) {
	var deliveries []model.Delivery
	err := r.DB.WithContext(ctx).
		Preload("Reservation").
		Where("status = ? AND next_attempt_at <= ? AND id > ?", model.DeliveryPending, now, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&deliveries).Error
	if err != nil {
		return nil, fmt.Errorf("load due deliveries: %w", err)
	}
	return deliveries, nil
}

func (r *ReservationRepository) FindDelivery(ctx context.Context, reservationID uint, channel string) (*model.Delivery, error) {
	var d model.Delivery
	err := r.DB.WithContext(ctx).
		Preload("Reservation").
		Where("reservation_id = ? AND channel = ?", reservationID, channel).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s delivery of reservation %d: %w", channel, reservationID, err)
	}
	return &d, nil
}

func (r *ReservationRepository) MarkDeliverySent(ctx context.Context, id uint, attempts int, at time.Time) error {
	return r.updateDelivery(ctx, id, map[string]interface{}{
		"status":     model.DeliverySent,
		"attempts":   attempts,
		"sent_at":    at,
		"last_error": "",
	})
}

func (r *ReservationRepository) MarkDeliveryFailed(ctx context.Context, id uint, attempts int, status model.DeliveryStatus, next time.Time, reason string) error {
	return r.updateDelivery(ctx, id, map[string]interface{}{
		"status":          status,
		"attempts":        attempts,
		"next_attempt_at": next,
		"last_error":      reason,
	})
}

func (r *ReservationRepository) updateDelivery(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.DB.WithContext(ctx).Model(&model.Delivery{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update delivery %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
