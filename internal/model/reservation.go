package model

import "time"

// Reservation - заявка на бронирование стола. Все поля хранятся как введены в форме.
type Reservation struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:text"`
	Phone     string    `json:"phone" gorm:"type:text"`
	Email     string    `json:"email" gorm:"type:text"`
	Guests    string    `json:"guests" gorm:"type:text"`
	Date      string    `json:"date" gorm:"type:text"`
	Time      string    `json:"time" gorm:"type:text"`
	Message   string    `json:"message" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
