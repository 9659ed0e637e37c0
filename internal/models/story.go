package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoryTTL is how long a story stays visible after creation
const StoryTTL = 24 * time.Hour

// Story represents an ephemeral media post stored in MongoDB. Expired
// stories are excluded from every feed query and purged by a TTL index.
type Story struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID   `json:"user_id" bson:"user_id"`
	Media     string               `json:"media" bson:"media"`
	MediaType MediaType            `json:"media_type" bson:"media_type"`
	Views     []primitive.ObjectID `json:"views" bson:"views"`
	ExpiresAt time.Time            `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
}

// IsExpired reports whether the story has passed its expiry at time now
func (s *Story) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// StoryBucket groups one user's active stories for the story feed
type StoryBucket struct {
	User    UserSummary `json:"user"`
	Stories []Story     `json:"stories"`
}
