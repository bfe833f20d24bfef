package review

import "time"

// Review represents the reviews table. The unique index on OrderID is what
// makes review submission a one-way gate per order.
type Review struct {
	ID         uint `gorm:"primaryKey"`
	OrderID    uint `gorm:"not null;uniqueIndex"`
	TailorID   uint `gorm:"not null;index"`
	CustomerID uint `gorm:"not null"`
	Rating     int  `gorm:"not null"`
	Text       string
	CreatedAt  time.Time
}

func (Review) TableName() string {
	return "reviews"
}

const (
	MinRating  = 1
	MaxRating  = 5
	MinTextLen = 2
	MaxTextLen = 800
)
