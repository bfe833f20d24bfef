package httpdto

import (
	"time"

	"stitchlink/internal/domain/chat"
)

type EnsureConversationRequest struct {
	TailorID     uint   `json:"tailor_id"`
	TailorUserID uint   `json:"tailor_user_id"`
	OrderID      *uint  `json:"order_id"`
	CustomerName string `json:"customer_name"`
}

type SendMessageRequest struct {
	Text           string `json:"text"`
	AttachmentURL  string `json:"attachment_url"`
	AttachmentKind string `json:"attachment_kind"`
}

type ConversationResponse struct {
	ID              string     `json:"id"`
	CustomerID      uint       `json:"customer_id"`
	TailorID        uint       `json:"tailor_id"`
	OrderID         *uint      `json:"order_id,omitempty"`
	CustomerName    string     `json:"customer_name,omitempty"`
	TailorName      string     `json:"tailor_name,omitempty"`
	TailorAvatarURL string     `json:"tailor_avatar_url,omitempty"`
	UnreadCustomer  int        `json:"unread_customer"`
	UnreadTailor    int        `json:"unread_tailor"`
	LastMessageText string     `json:"last_message_text,omitempty"`
	LastMessageAt   *time.Time `json:"last_message_at,omitempty"`
	Locked          bool       `json:"locked"`
	ReviewID        *uint      `json:"review_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       uint      `json:"sender_id"`
	SenderRole     string    `json:"sender_role"`
	Text           string    `json:"text,omitempty"`
	AttachmentURL  string    `json:"attachment_url,omitempty"`
	AttachmentKind string    `json:"attachment_kind,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ListConversationsResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
	Total         int64                  `json:"total,omitempty"`
}

type ListMessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

func FromConversation(c chat.Conversation) ConversationResponse {
	resp := ConversationResponse{
		ID:              c.ID.String(),
		CustomerID:      c.CustomerID,
		TailorID:        c.TailorID,
		OrderID:         c.OrderID,
		CustomerName:    c.CustomerName,
		TailorName:      c.TailorName,
		TailorAvatarURL: c.TailorAvatarURL,
		UnreadCustomer:  c.UnreadCustomer,
		UnreadTailor:    c.UnreadTailor,
		LastMessageText: c.LastMessageText,
		Locked:          c.Locked,
		ReviewID:        c.ReviewID,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.LastMessageAt.Valid {
		at := c.LastMessageAt.Time
		resp.LastMessageAt = &at
	}
	return resp
}

func FromConversationSlice(conversations []chat.Conversation) []ConversationResponse {
	out := make([]ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		out = append(out, FromConversation(c))
	}
	return out
}

func FromMessage(m chat.Message) MessageResponse {
	resp := MessageResponse{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID,
		SenderRole:     string(m.SenderRole),
		Text:           m.Text,
		CreatedAt:      m.CreatedAt,
	}
	if m.AttachmentURL.Valid {
		resp.AttachmentURL = m.AttachmentURL.String
		resp.AttachmentKind = m.AttachmentKind.String
	}
	return resp
}

func FromMessageSlice(messages []chat.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, FromMessage(m))
	}
	return out
}

type AttachmentResponse struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}
