package domain

import (
	"context"
	"errors"
	"time"

	"feastiq/internal/model"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

type ListOrder int

const (
	// В порядке вставки (по id)
	OrderInserted ListOrder = iota
	// Сначала новые (по created_at)
	OrderNewestFirst
)

type ReservationRepo interface {
	// Вставка брони и ожидающих доставок по каналам в одной транзакции
	CreateReservation(ctx context.Context, r *model.Reservation, channels []string) error

	ListReservations(ctx context.Context, order ListOrder) ([]model.Reservation, error)

	GetReservation(ctx context.Context, id uint) (*model.Reservation, error)

	// Удаление брони вместе с ее доставками; ErrNotFound, если брони нет
	DeleteReservation(ctx context.Context, id uint) error

	CountReservations(ctx context.Context) (int64, error)
}

type DeliveryRepo interface {
	// Ожидающие доставки, срок которых наступил, вместе с бронью; id > afterID по возрастанию
	DueDeliveries(ctx context.Context, now time.Time, afterID uint, limit int) ([]model.Delivery, error)

	FindDelivery(ctx context.Context, reservationID uint, channel string) (*model.Delivery, error)

	MarkDeliverySent(ctx context.Context, id uint, attempts int, at time.Time) error

	MarkDeliveryFailed(ctx context.Context, id uint, attempts int, status model.DeliveryStatus, next time.Time, reason string) error
}

type AdminRepo interface {
	CreateAdmin(ctx context.Context, admin *model.AdminUser) error
	GetAdminByUsername(ctx context.Context, username string) (*model.AdminUser, error)
	UpdateAdminPassword(ctx context.Context, username, passwordHash string) error
	TouchAdminLogin(ctx context.Context, id uint, at time.Time) error
	ListAdmins(ctx context.Context) ([]model.AdminUser, error)
}
