package models

import "time"

// PaymentProfile is a user's FritterPay record. Listings copy its payment
// fields when created and never read it again.
type PaymentProfile struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	User            User      `gorm:"foreignKey:UserID" json:"user"`
	PaymentType     string    `gorm:"not null" json:"payment_type"`
	PaymentUsername string    `gorm:"not null" json:"payment_username"`
	PaymentLink     string    `gorm:"not null;default:''" json:"payment_link"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
