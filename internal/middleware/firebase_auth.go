package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/shariar-hasan/instaflow/backend/internal/repositories"
)

// FirebaseAuthMiddleware is the alternative access gate: it verifies a
// Firebase ID token instead of a locally signed JWT and resolves the
// acting user by Firebase UID. Enabled when a credentials file is
// configured.
func FirebaseAuthMiddleware(authClient *auth.Client, userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}

			idToken := tokenParts[1]
			token, err := authClient.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("Invalid or expired ID token: %v", err))
			}

			user, err := userRepo.GetUserByFirebaseUID(c.Request().Context(), token.UID)
			if err != nil {
				if err == repositories.ErrUserNotFound {
					return echo.NewHTTPError(http.StatusUnauthorized, "Token is not valid - user not found")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}

			c.Set(ContextKeyUserID, user.ID)
			c.Set(ContextKeyUser, user)

			return next(c)
		}
	}
}
