package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rasoilabs/rasoipos/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type EventsController struct {
	Hub *events.Hub
}

func NewEventsController(hub *events.Hub) *EventsController {
	return &EventsController{Hub: hub}
}

// Stream -> websocket endpoint pushing order, table and sync events
// to billing and kitchen screens. ?client= labels the connection.
func (ec *EventsController) Stream(c *gin.Context) {
	label := c.Query("client")
	if label == "" {
		label = "pos"
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	ec.Hub.Register(ws, label)

	// The feed is one-way; keep reading so pings are answered and the
	// disconnect is noticed.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	ec.Hub.Unregister(ws)
}
