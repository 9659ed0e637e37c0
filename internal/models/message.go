package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message represents a direct message stored in MongoDB
type Message struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SenderID  primitive.ObjectID `json:"sender_id" bson:"sender"`
	Receiver  primitive.ObjectID `json:"receiver_id" bson:"receiver"`
	Content   string             `json:"content" bson:"content"`
	Media     string             `json:"media,omitempty" bson:"media,omitempty"`
	MediaType MediaType          `json:"media_type,omitempty" bson:"media_type,omitempty"`
	IsRead    bool               `json:"is_read" bson:"is_read"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// SendMessageRequest defines the multipart form fields for POST /messages
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" form:"receiver_id" validate:"required"`
	Content    string `json:"content" form:"content" validate:"omitempty,max=2000"`
}

// ResolvedMessage is a message with both parties resolved to summaries
type ResolvedMessage struct {
	Message
	Sender   UserSummary `json:"sender"`
	Receiver UserSummary `json:"receiver"`
}

// Conversation is one row of the conversation list: the counterpart,
// the most recent message exchanged with them, and how many of their
// messages the acting user has not read yet.
type Conversation struct {
	UserID      primitive.ObjectID `json:"-" bson:"_id"`
	User        UserSummary        `json:"user" bson:"user"`
	LastMessage Message            `json:"last_message" bson:"last_message"`
	UnreadCount int                `json:"unread_count" bson:"unread_count"`
}
