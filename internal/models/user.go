package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Username changes are limited to this many within the trailing window.
const (
	UsernameChangeLimit  = 2
	UsernameChangeWindow = 7 * 24 * time.Hour
)

// User represents a user profile stored in MongoDB
type User struct {
	ID              primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Username        string               `json:"username" bson:"username"`
	Email           string               `json:"email,omitempty" bson:"email,omitempty"`
	Password        string               `json:"-" bson:"password"` // hashed, never serialized
	Bio             string               `json:"bio" bson:"bio"`
	ProfileImage    string               `json:"profile_image" bson:"profile_image"`
	Followers       []primitive.ObjectID `json:"followers" bson:"followers"`
	Following       []primitive.ObjectID `json:"following" bson:"following"`
	UsernameChanges UsernameChanges      `json:"-" bson:"username_changes"`
	FirebaseUID     string               `json:"-" bson:"firebase_uid,omitempty"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at" bson:"updated_at"`
}

// UsernameChanges tracks the username-change quota as a (count, lastChange) pair.
type UsernameChanges struct {
	Count      int       `json:"count" bson:"count"`
	LastChange time.Time `json:"last_change" bson:"last_change"`
}

// Allows reports whether another username change is permitted at time now.
func (u UsernameChanges) Allows(now time.Time) bool {
	windowStart := now.Add(-UsernameChangeWindow)
	if u.LastChange.After(windowStart) && u.Count >= UsernameChangeLimit {
		return false
	}
	return true
}

// Record bumps the counter for a change at time now. The count restarts at 1
// once the previous change has fallen out of the trailing window.
func (u *UsernameChanges) Record(now time.Time) {
	if u.LastChange.After(now.Add(-UsernameChangeWindow)) {
		u.Count++
	} else {
		u.Count = 1
	}
	u.LastChange = now
}

// UserSummary is the minimal public shape of a user used when resolving
// references (followers, comment authors, message parties, story viewers).
type UserSummary struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Username     string             `json:"username" bson:"username"`
	ProfileImage string             `json:"profile_image" bson:"profile_image"`
}

// ToSummary reduces a user to its public summary form
func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Username:     u.Username,
		ProfileImage: u.ProfileImage,
	}
}

// IsFollowing reports whether id is in the user's following set
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

// UpdateProfileRequest defines the multipart form fields for PUT /profile
type UpdateProfileRequest struct {
	Username string `form:"username" validate:"omitempty,min=3,max=30"`
	Bio      string `form:"bio" validate:"omitempty,max=160"`
}

// ProfileResponse bundles a profile with the user's posts and stories
type ProfileResponse struct {
	User    ProfileUser `json:"user"`
	Posts   []Post      `json:"posts"`
	Stories []Story     `json:"stories"`
}

// ProfileUser is a user with follower/following references resolved to summaries
type ProfileUser struct {
	ID           primitive.ObjectID `json:"id"`
	Username     string             `json:"username"`
	Bio          string             `json:"bio"`
	ProfileImage string             `json:"profile_image"`
	Followers    []UserSummary      `json:"followers"`
	Following    []UserSummary      `json:"following"`
	CreatedAt    time.Time          `json:"created_at"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
