package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/shariar-hasan/instaflow/backend/internal/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from arbitrary dev origins; the access
	// gate has already authenticated the request.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades a gate-authenticated request to a websocket
// connection and relays its envelopes until the client disconnects
func ServeWS(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := c.Get(middleware.ContextKeyUserID).(primitive.ObjectID)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
		}

		ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}

		id := userID.Hex()
		hub.Register(id, ws)
		defer func() {
			hub.Unregister(id, ws)
			ws.Close()
		}()

		for {
			var env Envelope
			if err := ws.ReadJSON(&env); err != nil {
				return nil
			}
			hub.Forward(id, env)
		}
	}
}
