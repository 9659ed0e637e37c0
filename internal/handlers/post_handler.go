package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shariar-hasan/instaflow/backend/internal/models"
	"github.com/shariar-hasan/instaflow/backend/internal/notifier"
	"github.com/shariar-hasan/instaflow/backend/internal/repositories"
	"github.com/shariar-hasan/instaflow/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	notifier       *notifier.Notifier
	uploader       *storage.Uploader
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	n *notifier.Notifier,
	uploader *storage.Uploader,
) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		notifier:       n,
		uploader:       uploader,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts/feed", h.GetFeed)
	g.POST("/posts", h.CreatePost)
	g.POST("/posts/:id/like", h.ToggleLike)
	g.POST("/posts/:id/comment", h.AddComment)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post from a required image upload and an
// optional caption
func (h *PostHandler) CreatePost(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "An image is required")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	path, _, err := h.uploader.Save(file, storage.KindPost, models.MediaTypeImage)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post := &models.Post{
		UserID:  user.ID,
		Image:   path,
		Caption: req.Caption,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, models.FeedPost{
		Post:     *post,
		Author:   user.ToSummary(),
		Comments: []models.ResolvedComment{},
	})
}

// GetFeed returns the posts of everyone the acting user follows, plus
// the user's own, newest first, with authors resolved
func (h *PostHandler) GetFeed(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	ownerIDs := append(append([]primitive.ObjectID{}, user.Following...), user.ID)

	posts, err := h.postRepository.GetFeedPosts(ctx, ownerIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	feed, err := h.resolvePosts(c, posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, feed)
}

// resolvePosts attaches author summaries to posts and their comments
func (h *PostHandler) resolvePosts(c echo.Context, posts []models.Post) ([]models.FeedPost, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, p := range posts {
		idSet[p.UserID] = struct{}{}
		for _, cm := range p.Comments {
			idSet[cm.UserID] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	summaries, err := h.userRepository.GetSummaries(c.Request().Context(), ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.UserSummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}

	feed := make([]models.FeedPost, 0, len(posts))
	for _, p := range posts {
		comments := make([]models.ResolvedComment, 0, len(p.Comments))
		for _, cm := range p.Comments {
			comments = append(comments, models.ResolvedComment{
				Comment: cm,
				Author:  byID[cm.UserID],
			})
		}
		feed = append(feed, models.FeedPost{
			Post:     p,
			Author:   byID[p.UserID],
			Comments: comments,
		})
	}
	return feed, nil
}

// ToggleLike adds or removes the acting user in a post's likes set and
// returns the resulting count and state
func (h *PostHandler) ToggleLike(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isLiked := post.IsLikedBy(user.ID)

	resp := models.LikeResponse{}
	if isLiked {
		if err := h.postRepository.RemoveLike(ctx, post.ID, user.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		resp.Message = "Post unliked"
		resp.Likes = len(post.Likes) - 1
		resp.IsLiked = false
	} else {
		if err := h.postRepository.AddLike(ctx, post.ID, user.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		resp.Message = "Post liked"
		resp.Likes = len(post.Likes) + 1
		resp.IsLiked = true

		if post.UserID != user.ID {
			h.notifier.Notify(&models.Notification{
				Recipient: post.UserID,
				Sender:    user.ID,
				Type:      models.NotificationTypeLike,
				PostID:    post.ID,
			})
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// AddComment appends a comment to a post and returns it with its
// author resolved
func (h *PostHandler) AddComment(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comment := &models.Comment{
		UserID: user.ID,
		Text:   req.Text,
	}
	if err := h.postRepository.AddComment(ctx, post.ID, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != user.ID {
		h.notifier.Notify(&models.Notification{
			Recipient: post.UserID,
			Sender:    user.ID,
			Type:      models.NotificationTypeComment,
			PostID:    post.ID,
		})
	}

	return c.JSON(http.StatusOK, models.ResolvedComment{
		Comment: *comment,
		Author:  user.ToSummary(),
	})
}

// DeletePost deletes a post. Only the owner may delete it.
func (h *PostHandler) DeletePost(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != user.ID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	if err := h.postRepository.DeletePost(ctx, post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted"})
}
