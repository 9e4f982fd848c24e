package domain

import (
	"context"

	"feastiq/internal/model"
)

// Notifier доставляет уведомление о брони по одному каналу (почта, таблица, телеграм).
type Notifier interface {
	Channel() string
	Notify(ctx context.Context, r model.Reservation) error
}
