package chat

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Conversation represents the conversations table. At most one row exists per
// (customer, tailor, order) triple; ThreadKey carries that uniqueness into a
// single indexed column so the constraint also covers order-less inquiries,
// which a plain composite index would not (NULL order ids compare distinct).
type Conversation struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID uint      `gorm:"not null;index"`
	TailorID   uint      `gorm:"not null;index"`
	OrderID    *uint
	ThreadKey  string `gorm:"not null;uniqueIndex"`

	// Peer display snapshots, cached to keep list reads join-free.
	CustomerName    string
	TailorName      string
	TailorAvatarURL string

	UnreadCustomer int `gorm:"not null;default:0"`
	UnreadTailor   int `gorm:"not null;default:0"`

	LastMessageText    string
	LastMessageAt      sql.NullTime
	CustomerLastReadAt sql.NullTime
	TailorLastReadAt   sql.NullTime

	// Locked is one-way: set when a review lands on the order, never unset.
	Locked   bool `gorm:"not null;default:false"`
	ReviewID *uint

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message represents the messages table. Rows are immutable once created.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_cursor,priority:1"`
	SenderID       uint      `gorm:"not null"`
	SenderRole     Role      `gorm:"not null"`
	Text           string    `gorm:"type:text"`
	AttachmentURL  sql.NullString
	AttachmentKind sql.NullString
	CreatedAt      time.Time `gorm:"index:idx_messages_cursor,priority:2"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (Message) TableName() string {
	return "messages"
}

// ThreadKey derives the unique key for a (customer, tailor, order) triple.
// Order id zero marks an inquiry thread with no order attached.
func ThreadKey(customerID, tailorID uint, orderID *uint) string {
	var oid uint
	if orderID != nil {
		oid = *orderID
	}
	return fmt.Sprintf("%d:%d:%d", customerID, tailorID, oid)
}

// UnreadFor returns the unread counter owned by the given participant.
func (c *Conversation) UnreadFor(role Role) int {
	switch role {
	case RoleCustomer:
		return c.UnreadCustomer
	case RoleTailor:
		return c.UnreadTailor
	}
	return 0
}

// ParticipantID returns the user id of the given side of the thread.
func (c *Conversation) ParticipantID(role Role) uint {
	switch role {
	case RoleCustomer:
		return c.CustomerID
	case RoleTailor:
		return c.TailorID
	}
	return 0
}
