package httpdto

import (
	"time"

	"stitchlink/internal/domain/order"
)

type RequestOrderRequest struct {
	TailorID          uint              `json:"tailor_id"`
	GarmentType       string            `json:"garment_type"`
	FabricOption      string            `json:"fabric_option"`
	MeasurementMethod string            `json:"measurement_method"`
	Measurements      map[string]string `json:"measurements"`
	Address           string            `json:"address"`
}

type QuoteOrderRequest struct {
	Price                float64 `json:"price"`
	DeliveryDays         int     `json:"delivery_days"`
	ExpectedDeliveryDate string  `json:"expected_delivery_date"`
	Note                 string  `json:"note"`
}

type AdvanceOrderRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type QuoteResponse struct {
	Price                float64    `json:"price"`
	DeliveryDays         int        `json:"delivery_days"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date,omitempty"`
	Note                 string     `json:"note,omitempty"`
	QuotedAt             *time.Time `json:"quoted_at,omitempty"`
}

type OrderEventResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderResponse struct {
	ID                uint                 `json:"id"`
	CustomerID        uint                 `json:"customer_id"`
	TailorID          uint                 `json:"tailor_id"`
	GarmentType       string               `json:"garment_type"`
	FabricOption      string               `json:"fabric_option,omitempty"`
	MeasurementMethod string               `json:"measurement_method,omitempty"`
	Measurements      map[string]string    `json:"measurements,omitempty"`
	Address           string               `json:"address"`
	Quote             *QuoteResponse       `json:"quote,omitempty"`
	Status            string               `json:"status"`
	ReviewID          *uint                `json:"review_id,omitempty"`
	History           []OrderEventResponse `json:"history,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
}

func FromOrder(o order.Order) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		CustomerID:        o.CustomerID,
		TailorID:          o.TailorID,
		GarmentType:       o.GarmentType,
		FabricOption:      o.FabricOption,
		MeasurementMethod: o.MeasurementMethod,
		Measurements:      o.Measurements,
		Address:           o.Address,
		Status:            string(o.Status),
		ReviewID:          o.ReviewID,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}

	if o.QuotedAt.Valid {
		quote := &QuoteResponse{
			Price:        o.QuotePrice,
			DeliveryDays: o.QuoteDeliveryDays,
			Note:         o.QuoteNote,
		}
		quotedAt := o.QuotedAt.Time
		quote.QuotedAt = &quotedAt
		if o.QuoteExpectedDelivery.Valid {
			expected := o.QuoteExpectedDelivery.Time
			quote.ExpectedDeliveryDate = &expected
		}
		resp.Quote = quote
	}

	for _, e := range o.History {
		resp.History = append(resp.History, OrderEventResponse{
			Status:    string(e.Status),
			Note:      e.Note,
			CreatedAt: e.CreatedAt,
		})
	}

	return resp
}

func FromOrderSlice(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrder(o))
	}
	return out
}
