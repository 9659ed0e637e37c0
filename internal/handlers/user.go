package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shariar-hasan/instaflow/backend/internal/models"
	"github.com/shariar-hasan/instaflow/backend/internal/notifier"
	"github.com/shariar-hasan/instaflow/backend/internal/repositories"
	"github.com/shariar-hasan/instaflow/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository  repositories.UserRepository
	postRepository  repositories.PostRepository
	storyRepository repositories.StoryRepository
	notifier        *notifier.Notifier
	uploader        *storage.Uploader
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	storyRepo repositories.StoryRepository,
	n *notifier.Notifier,
	uploader *storage.Uploader,
) *UserHandler {
	return &UserHandler{
		userRepository:  userRepo,
		postRepository:  postRepo,
		storyRepository: storyRepo,
		notifier:        n,
		uploader:        uploader,
	}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetProfile)
	g.PUT("/users/profile", h.UpdateProfile)
	g.POST("/users/:id/follow", h.FollowUser)
}

// GetProfile returns a user's profile with follower/following summaries
// resolved, together with the user's posts and stories
func (h *UserHandler) GetProfile(c echo.Context) error {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	followers, err := h.userRepository.GetSummaries(ctx, user.Followers)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	following, err := h.userRepository.GetSummaries(ctx, user.Following)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	posts, err := h.postRepository.GetPostsByUserID(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	stories, err := h.storyRepository.GetStoriesByUserID(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, models.ProfileResponse{
		User: models.ProfileUser{
			ID:           user.ID,
			Username:     user.Username,
			Bio:          user.Bio,
			ProfileImage: user.ProfileImage,
			Followers:    followers,
			Following:    following,
			CreatedAt:    user.CreatedAt,
		},
		Posts:   posts,
		Stories: stories,
	})
}

// UpdateProfile updates the acting user's bio, profile image and
// username. Username changes are limited to twice per trailing week.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	if req.Username != "" && req.Username != user.Username {
		now := time.Now()
		if !user.UsernameChanges.Allows(now) {
			return echo.NewHTTPError(http.StatusConflict, "You can only change your username twice per week")
		}

		existing, err := h.userRepository.GetUserByUsername(ctx, req.Username)
		if err != nil && err != repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if existing != nil && existing.ID != user.ID {
			return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
		}

		user.UsernameChanges.Record(now)
		user.Username = req.Username
	}

	// Bio replaces unconditionally when present in the form, so it can
	// be cleared by sending an empty value.
	if params, err := c.FormParams(); err == nil {
		if _, ok := params["bio"]; ok {
			user.Bio = req.Bio
		}
	}

	if file, err := c.FormFile("image"); err == nil {
		path, _, err := h.uploader.Save(file, storage.KindProfile, models.MediaTypeImage)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		user.ProfileImage = path
	}

	if err := h.userRepository.UpdateProfile(ctx, user); err != nil {
		if err == repositories.ErrUsernameTaken {
			return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

// FollowUser toggles the follow edge between the acting user and the
// target. Both directions are inserted or removed as a pair.
func (h *UserHandler) FollowUser(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if targetID == user.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	ctx := c.Request().Context()
	target, err := h.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isFollowing := user.IsFollowing(target.ID)

	if isFollowing {
		err = h.userRepository.RemoveFollowEdge(ctx, user.ID, target.ID)
	} else {
		err = h.userRepository.AddFollowEdge(ctx, user.ID, target.ID)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !isFollowing {
		h.notifier.Notify(&models.Notification{
			Recipient: target.ID,
			Sender:    user.ID,
			Type:      models.NotificationTypeFollow,
		})
	}

	message := "Followed successfully"
	if isFollowing {
		message = "Unfollowed successfully"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      message,
		"is_following": !isFollowing,
	})
}

// SearchUsers searches usernames by case-insensitive substring match,
// returning only public summaries
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, users)
}
