package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID   `json:"user_id" bson:"user_id"`
	Image     string               `json:"image" bson:"image"`
	Caption   string               `json:"caption" bson:"caption"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []Comment            `json:"comments" bson:"comments"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// Comment is a single comment embedded in a post, append-only and
// ordered by insertion
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// IsLikedBy reports whether userID is in the post's likes set
func (p *Post) IsLikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CreatePostRequest defines the multipart form fields for POST /posts
type CreatePostRequest struct {
	Caption string `form:"caption" validate:"omitempty,max=2200"`
}

// AddCommentRequest defines the request body for POST /posts/:id/comment
type AddCommentRequest struct {
	Text string `json:"text" form:"text" validate:"required,min=1,max=500"`
}

// FeedPost is a post with its author and comment authors resolved
type FeedPost struct {
	Post
	Author   UserSummary       `json:"author"`
	Comments []ResolvedComment `json:"comments"`
}

// ResolvedComment is a comment with its author resolved to a summary
type ResolvedComment struct {
	Comment
	Author UserSummary `json:"author"`
}

// LikeResponse is the result of a like toggle
type LikeResponse struct {
	Message string `json:"message"`
	Likes   int    `json:"likes"`
	IsLiked bool   `json:"is_liked"`
}
