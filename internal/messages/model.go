package messages

import (
	"errors"
	"fmt"
	"strings"
)

// StorageKey is the durable storage key holding the serialized message database.
const StorageKey = "nomad_nantes_db_store_v1"

// Status enumerates delivery states of a chat message.
type Status string

const (
	// StatusSent marks a message accepted by the local store.
	StatusSent Status = "sent"
	// StatusRead marks a message seen by its recipients.
	StatusRead Status = "read"
)

// Ordering selects how messages within a chat are ordered on read.
type Ordering string

const (
	// OrderingInsertion returns messages in the order they were appended.
	OrderingInsertion Ordering = "insertion"
	// OrderingTimestamp orders by the display timestamp string, which is
	// lexicographic ("HH:MM") and wraps at midnight. Insertion order breaks ties.
	OrderingTimestamp Ordering = "timestamp"
)

var (
	// ErrInvalidChatID indicates an empty chat grouping key.
	ErrInvalidChatID = errors.New("messages: invalid chat id")
	// ErrInvalidMessageID indicates an empty message identifier.
	ErrInvalidMessageID = errors.New("messages: invalid message id")
	// ErrInvalidOrdering indicates an unknown ordering name.
	ErrInvalidOrdering = errors.New("messages: invalid ordering")
)

// ParseOrdering validates an ordering name.
func ParseOrdering(raw string) (Ordering, error) {
	switch Ordering(strings.ToLower(strings.TrimSpace(raw))) {
	case OrderingInsertion, "":
		return OrderingInsertion, nil
	case OrderingTimestamp:
		return OrderingTimestamp, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrdering, raw)
	}
}

func (o Ordering) orderClause() string {
	if o == OrderingTimestamp {
		return "display_time ASC, seq ASC"
	}
	return "seq ASC"
}

// Message is one chat message as exposed to callers.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	IsMe      bool   `json:"isMe"`
	Status    Status `json:"status,omitempty"`
}

// Record is the persisted row backing a Message.
type Record struct {
	Seq         int64  `gorm:"column:seq;primaryKey;autoIncrement"`
	ChatID      string `gorm:"column:chat_id;size:190;not null;uniqueIndex:idx_chat_messages_chat_message,priority:1"`
	MessageID   string `gorm:"column:message_id;size:190;not null;uniqueIndex:idx_chat_messages_chat_message,priority:2"`
	Sender      string `gorm:"column:sender;size:190;not null"`
	Body        string `gorm:"column:body;type:text;not null"`
	DisplayTime string `gorm:"column:display_time;size:32;not null;default:''"`
	IsMe        bool   `gorm:"column:is_me;not null;default:false"`
	Status      string `gorm:"column:status;size:16;not null;default:'sent'"`
}

// TableName provides the explicit table binding for GORM.
func (Record) TableName() string {
	return "chat_messages"
}

func newRecord(chatID string, message Message) Record {
	status := message.Status
	if status == "" {
		status = StatusSent
	}
	return Record{
		ChatID:      chatID,
		MessageID:   message.ID,
		Sender:      message.Sender,
		Body:        message.Text,
		DisplayTime: message.Timestamp,
		IsMe:        message.IsMe,
		Status:      string(status),
	}
}

func (r Record) message() Message {
	return Message{
		ID:        r.MessageID,
		Sender:    r.Sender,
		Text:      r.Body,
		Timestamp: r.DisplayTime,
		IsMe:      r.IsMe,
		Status:    Status(r.Status),
	}
}
