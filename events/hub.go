package events

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/utils"
)

// Event names pushed to connected screens.
const (
	EventOrderCreated  = "order_created"
	EventOrderUpdated  = "order_updated"
	EventKOTCreated    = "kot_created"
	EventTableUpdated  = "table_updated"
	EventSyncStarted   = "sync_started"
	EventSyncCompleted = "sync_completed"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub fans events out to the connected websocket clients (billing
// screen, kitchen display). It is constructed once and injected;
// a nil *Hub drops every publish, which keeps tests quiet.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]string
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

// Register adds a connection under a client label ("billing", "kds").
func (h *Hub) Register(conn *websocket.Conn, label string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = label
}

// Unregister drops a connection and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// ClientCount reports how many screens are connected.
func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish broadcasts one event to every connected client. Connections
// that fail to take the write are dropped.
func (h *Hub) Publish(event string, data interface{}) {
	if h == nil {
		return
	}
	msg := Message{Event: event, Data: data}
	payload, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("events: marshal %s: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, label := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Printf("events: drop %s client: %v", label, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func (h *Hub) OrderCreated(order *models.Order) { h.Publish(EventOrderCreated, order) }

func (h *Hub) OrderUpdated(order *models.Order) { h.Publish(EventOrderUpdated, order) }

func (h *Hub) TableUpdated(table *models.Table) { h.Publish(EventTableUpdated, table) }

func (h *Hub) SyncStarted() { h.Publish(EventSyncStarted, nil) }

func (h *Hub) SyncCompleted(report interface{}) { h.Publish(EventSyncCompleted, report) }

// KOTCreated announces a new kitchen ticket with its items.
func (h *Hub) KOTCreated(orderID string, kot int, items []models.OrderItem) {
	h.Publish(EventKOTCreated, map[string]interface{}{
		"orderId":   orderID,
		"kotNumber": kot,
		"items":     items,
	})
}
