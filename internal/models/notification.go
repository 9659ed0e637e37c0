package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types emitted by the stores.
const (
	NotificationTypeMessage = "message"
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeFollow  = "follow"
	NotificationTypeView    = "view"
)

// Notification is an activity event fanned out to a recipient. Creation
// is fire-and-forget: it never blocks or fails the triggering operation.
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Recipient primitive.ObjectID `json:"recipient" bson:"recipient"`
	Sender    primitive.ObjectID `json:"sender" bson:"sender"`
	Type      string             `json:"type" bson:"type"`
	PostID    primitive.ObjectID `json:"post_id,omitempty" bson:"post,omitempty"`
	StoryID   primitive.ObjectID `json:"story_id,omitempty" bson:"story,omitempty"`
	MessageID primitive.ObjectID `json:"message_id,omitempty" bson:"message,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
