package repositories

import "errors"

// Sentinel errors shared by the repository implementations. Handlers map
// these onto HTTP status codes.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrStoryNotFound   = errors.New("story not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrUsernameTaken   = errors.New("username is already taken")
)
