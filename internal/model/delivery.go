package model

import "time"

const (
	ChannelEmail    = "email"
	ChannelSheet    = "sheet"
	ChannelTelegram = "telegram"
)

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// Delivery - запись исходящей очереди: одно уведомление о брони по одному каналу.
type Delivery struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ReservationID uint           `json:"reservation_id" gorm:"not null;uniqueIndex:delivery_reservation_channel_unique"`
	Channel       string         `json:"channel" gorm:"type:varchar(32);not null;uniqueIndex:delivery_reservation_channel_unique"`
	Status        DeliveryStatus `json:"status" gorm:"type:varchar(16);not null;index:delivery_due"`
	Attempts      int            `json:"attempts" gorm:"not null"`
	NextAttemptAt time.Time      `json:"next_attempt_at" gorm:"index:delivery_due"`
	LastError     string         `json:"last_error" gorm:"type:text"`
	SentAt        *time.Time     `json:"sent_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Reservation Reservation `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
