package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shariar-hasan/instaflow/backend/internal/models"
	"github.com/shariar-hasan/instaflow/backend/internal/notifier"
	"github.com/shariar-hasan/instaflow/backend/internal/repositories"
	"github.com/shariar-hasan/instaflow/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	storyRepository repositories.StoryRepository
	userRepository  repositories.UserRepository
	notifier        *notifier.Notifier
	uploader        *storage.Uploader
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(
	storyRepo repositories.StoryRepository,
	userRepo repositories.UserRepository,
	n *notifier.Notifier,
	uploader *storage.Uploader,
) *StoryHandler {
	return &StoryHandler{
		storyRepository: storyRepo,
		userRepository:  userRepo,
		notifier:        n,
		uploader:        uploader,
	}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories/feed", h.GetFeedStories)
	g.POST("/stories", h.CreateStory)
	g.POST("/stories/:id/view", h.ViewStory)
	g.GET("/stories/:id/views", h.GetStoryViews)
	g.DELETE("/stories/:id", h.DeleteStory)
}

// StoryWithAuthor is a story with its owner resolved
type StoryWithAuthor struct {
	models.Story
	Author models.UserSummary `json:"author"`
}

// CreateStory creates a story from an uploaded image or video, expiring
// 24 hours after creation
func (h *StoryHandler) CreateStory(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	file, err := c.FormFile("media")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A media file is required")
	}

	path, mediaType, err := h.uploader.Save(file, storage.KindStory, models.MediaTypeImage, models.MediaTypeVideo)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	story := &models.Story{
		UserID:    user.ID,
		Media:     path,
		MediaType: mediaType,
	}
	if err := h.storyRepository.CreateStory(c.Request().Context(), story); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, StoryWithAuthor{
		Story:  *story,
		Author: user.ToSummary(),
	})
}

// GetFeedStories returns the active stories of everyone the acting user
// follows, grouped into one bucket per owner. The acting user's own
// stories are not part of this feed.
func (h *StoryHandler) GetFeedStories(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	stories, err := h.storyRepository.GetActiveStoriesByUserIDs(ctx, user.Following)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Group by owner, buckets in first-seen order so the response order
	// is stable.
	byOwner := make(map[primitive.ObjectID]int)
	buckets := make([]models.StoryBucket, 0)
	for _, s := range stories {
		idx, ok := byOwner[s.UserID]
		if !ok {
			idx = len(buckets)
			byOwner[s.UserID] = idx
			buckets = append(buckets, models.StoryBucket{Stories: []models.Story{}})
		}
		buckets[idx].Stories = append(buckets[idx].Stories, s)
	}

	ownerIDs := make([]primitive.ObjectID, 0, len(byOwner))
	for id := range byOwner {
		ownerIDs = append(ownerIDs, id)
	}
	summaries, err := h.userRepository.GetSummaries(ctx, ownerIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for _, s := range summaries {
		if idx, ok := byOwner[s.ID]; ok {
			buckets[idx].User = s
		}
	}

	return c.JSON(http.StatusOK, buckets)
}

// ViewStory records the acting user in a story's views set. Repeated
// views by the same user are no-ops and never emit a second
// notification.
func (h *StoryHandler) ViewStory(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	storyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid story ID")
	}

	ctx := c.Request().Context()
	story, err := h.storyRepository.GetStoryByID(ctx, storyID)
	if err != nil {
		if err == repositories.ErrStoryNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	added, err := h.storyRepository.AddView(ctx, story.ID, user.ID)
	if err != nil {
		if err == repositories.ErrStoryNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if added && story.UserID != user.ID {
		h.notifier.Notify(&models.Notification{
			Recipient: story.UserID,
			Sender:    user.ID,
			Type:      models.NotificationTypeView,
			StoryID:   story.ID,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Story viewed"})
}

// GetStoryViews returns the resolved viewer list of a story. Only the
// owner may see it.
func (h *StoryHandler) GetStoryViews(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	storyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid story ID")
	}

	ctx := c.Request().Context()
	story, err := h.storyRepository.GetStoryByID(ctx, storyID)
	if err != nil {
		if err == repositories.ErrStoryNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if story.UserID != user.ID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	viewers, err := h.userRepository.GetSummaries(ctx, story.Views)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, viewers)
}

// DeleteStory deletes a story. Only the owner may delete it.
func (h *StoryHandler) DeleteStory(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	storyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid story ID")
	}

	ctx := c.Request().Context()
	story, err := h.storyRepository.GetStoryByID(ctx, storyID)
	if err != nil {
		if err == repositories.ErrStoryNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if story.UserID != user.ID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	if err := h.storyRepository.DeleteStory(ctx, story.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Story deleted"})
}
