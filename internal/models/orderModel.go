package models

import "time"

type Order struct {
	ID              uint    `gorm:"primaryKey"`
	ClientOrderID   string  `gorm:"uniqueIndex;not null"`
	ExchangeOrderID int64   `gorm:"index"`
	Symbol          string  `gorm:"index;not null"`
	Side            string  `gorm:"not null"`
	Quantity        float64 `gorm:"type:decimal(20,8);not null"`
	Status          string  `gorm:"not null"`
	Reason          string

	// Model that made the trade eligible
	ModelFullName string `gorm:"index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

const (
	OrderSideBuy  = "BUY"
	OrderSideSell = "SELL"

	OrderStatusPending   = "pending"
	OrderStatusSkipped   = "skipped"
	OrderStatusSubmitted = "submitted"
	OrderStatusFailed    = "failed"
)
