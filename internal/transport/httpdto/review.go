package httpdto

import (
	"time"

	"stitchlink/internal/domain/review"
)

type SubmitReviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

type ReviewResponse struct {
	ID         uint      `json:"id"`
	OrderID    uint      `json:"order_id"`
	TailorID   uint      `json:"tailor_id"`
	CustomerID uint      `json:"customer_id"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type SubmitReviewResponse struct {
	Review           ReviewResponse `json:"review"`
	AlreadySubmitted bool           `json:"already_submitted"`
}

type ListReviewsResponse struct {
	Reviews []ReviewResponse `json:"reviews"`
	Total   int64            `json:"total"`
}

func FromReview(r review.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		OrderID:    r.OrderID,
		TailorID:   r.TailorID,
		CustomerID: r.CustomerID,
		Rating:     r.Rating,
		Text:       r.Text,
		CreatedAt:  r.CreatedAt,
	}
}

func FromReviewSlice(reviews []review.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, FromReview(r))
	}
	return out
}
