package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shariar-hasan/instaflow/backend/internal/models"
	"github.com/shariar-hasan/instaflow/backend/internal/notifier"
	"github.com/shariar-hasan/instaflow/backend/internal/realtime"
	"github.com/shariar-hasan/instaflow/backend/internal/repositories"
	"github.com/shariar-hasan/instaflow/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultMessagePageSize = 20

// MessageHandler handles direct-message HTTP requests
type MessageHandler struct {
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
	notifier          *notifier.Notifier
	hub               *realtime.Hub
	uploader          *storage.Uploader
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	n *notifier.Notifier,
	hub *realtime.Hub,
	uploader *storage.Uploader,
) *MessageHandler {
	return &MessageHandler{
		messageRepository: messageRepo,
		userRepository:    userRepo,
		notifier:          n,
		hub:               hub,
		uploader:          uploader,
	}
}

// RegisterMessageRoutes registers message-related routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("/messages/conversations", h.GetConversations)
	g.GET("/messages/:userId", h.GetMessages)
	g.POST("/messages", h.SendMessage)
	g.DELETE("/messages/:id", h.DeleteMessage)
}

// GetConversations returns one row per counterpart the acting user has
// exchanged messages with: the latest message and the unread count
func (h *MessageHandler) GetConversations(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversations, err := h.messageRepository.GetConversations(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, conversations)
}

// GetMessages returns one page of the message history with another
// user, oldest-to-newest within the page (pages step backwards through
// time). As a side effect every unread message from that user is marked
// read.
func (h *MessageHandler) GetMessages(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	otherID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultMessagePageSize
	}
	skip := int64((page - 1) * limit)

	ctx := c.Request().Context()
	other, err := h.userRepository.GetUserByID(ctx, otherID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	messages, err := h.messageRepository.GetMessagesBetween(ctx, user.ID, other.ID, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.messageRepository.MarkRead(ctx, other.ID, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// The repository returns the page newest-first; reverse it so the
	// page reads oldest-to-newest.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	summaries := map[primitive.ObjectID]models.UserSummary{
		user.ID:  user.ToSummary(),
		other.ID: other.ToSummary(),
	}
	resolved := make([]models.ResolvedMessage, 0, len(messages))
	for _, m := range messages {
		resolved = append(resolved, models.ResolvedMessage{
			Message:  m,
			Sender:   summaries[m.SenderID],
			Receiver: summaries[m.Receiver],
		})
	}

	return c.JSON(http.StatusOK, resolved)
}

// SendMessage creates a direct message with optional media, notifies
// the receiver and pushes a best-effort delivery over the relay
func (h *MessageHandler) SendMessage(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid receiver ID")
	}

	ctx := c.Request().Context()
	receiver, err := h.userRepository.GetUserByID(ctx, receiverID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	message := &models.Message{
		SenderID: user.ID,
		Receiver: receiver.ID,
		Content:  req.Content,
	}

	if file, err := c.FormFile("media"); err == nil {
		path, mediaType, err := h.uploader.Save(file, storage.KindMessage,
			models.MediaTypeImage, models.MediaTypeVideo, models.MediaTypeAudio)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		message.Media = path
		message.MediaType = mediaType
	}

	if message.Content == "" && message.Media == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message content or media is required")
	}

	if err := h.messageRepository.CreateMessage(ctx, message); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notifier.Notify(&models.Notification{
		Recipient: receiver.ID,
		Sender:    user.ID,
		Type:      models.NotificationTypeMessage,
		MessageID: message.ID,
	})

	resolved := models.ResolvedMessage{
		Message:  *message,
		Sender:   user.ToSummary(),
		Receiver: receiver.ToSummary(),
	}

	// Low-latency shortcut only; the stored message is the durable
	// record.
	h.hub.Push(receiver.ID.Hex(), realtime.Frame{
		Event:   realtime.EventReceiveMessage,
		From:    user.ID.Hex(),
		Payload: resolved,
	})

	return c.JSON(http.StatusCreated, resolved)
}

// DeleteMessage deletes a message. Only the sender may delete it.
func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	user := getUserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	messageID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid message ID")
	}

	ctx := c.Request().Context()
	message, err := h.messageRepository.GetMessageByID(ctx, messageID)
	if err != nil {
		if err == repositories.ErrMessageNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Message not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if message.SenderID != user.ID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	if err := h.messageRepository.DeleteMessage(ctx, message.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Message deleted"})
}
