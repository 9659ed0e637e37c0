package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/shariar-hasan/instaflow/backend/internal/middleware"
	"github.com/shariar-hasan/instaflow/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// getUserFromContext returns the acting user resolved by the access
// gate, or nil when the gate did not run
func getUserFromContext(c echo.Context) *models.User {
	user, _ := c.Get(middleware.ContextKeyUser).(*models.User)
	return user
}

// getUserIDFromContext returns the acting user's ID, or the zero
// ObjectID when the gate did not run
func getUserIDFromContext(c echo.Context) primitive.ObjectID {
	id, _ := c.Get(middleware.ContextKeyUserID).(primitive.ObjectID)
	return id
}
