package order

import (
	"database/sql"
	"time"
)

// Order represents the orders table. One row per garment request; rows are
// never deleted, terminal orders stay around for audit.
type Order struct {
	ID                uint `gorm:"primaryKey"`
	CustomerID        uint `gorm:"not null;index"`
	TailorID          uint `gorm:"not null;index"`
	GarmentType       string
	FabricOption      string
	MeasurementMethod string
	Measurements      map[string]string `gorm:"serializer:json"`
	Address           string

	QuotePrice            float64
	QuoteDeliveryDays     int
	QuoteExpectedDelivery sql.NullTime
	QuoteNote             string
	QuotedAt              sql.NullTime

	Payments []PaymentEntry `gorm:"serializer:json"`

	Status   Status `gorm:"not null;default:'REQUESTED';index"`
	ReviewID *uint

	History []Event `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event represents the order_events table, the append-only status history.
// Creation seeds one entry, so len(History) is always transitions + 1.
type Event struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   uint   `gorm:"not null;index"`
	Status    Status `gorm:"not null"`
	Note      string
	CreatedAt time.Time
}

type PaymentEntry struct {
	Amount float64   `json:"amount"`
	Method string    `json:"method"`
	PaidAt time.Time `json:"paid_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (Event) TableName() string {
	return "order_events"
}
