package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/7FIl/freepass-2026/models"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// client is one kitchen screen. Messages are queued on send and written by
// its own writePump, so a slow screen never blocks a broadcast.
type client struct {
	conn      *websocket.Conn
	canteenID string
	send      chan []byte
}

// Hub keeps the kitchen display connections of each canteen and pushes order
// events to the screens of the canteen the order belongs to.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
		log:     log,
	}
}

func (h *Hub) Register(conn *websocket.Conn, canteenID string) {
	cl := &client{conn: conn, canteenID: canteenID, send: make(chan []byte, sendBuffer)}
	h.mutex.Lock()
	h.clients[conn] = cl
	h.mutex.Unlock()
	go h.writePump(cl)
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	h.drop(conn)
	h.mutex.Unlock()
	conn.Close()
}

// drop removes a screen and stops its writer. Callers hold the mutex.
func (h *Hub) drop(conn *websocket.Conn) {
	cl, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(cl.send)
}

// ClientCount returns the number of screens attached to a canteen.
func (h *Hub) ClientCount(canteenID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	n := 0
	for _, cl := range h.clients {
		if cl.canteenID == canteenID {
			n++
		}
	}
	return n
}

// NotifyOrder broadcasts an order event to the order's canteen.
func (h *Hub) NotifyOrder(event string, order *models.Order) {
	h.Broadcast(order.CanteenID, Message{Event: event, Data: order})
}

// Broadcast queues msg for every screen of the canteen. A screen whose queue
// is full is dropped.
func (h *Hub) Broadcast(canteenID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("kds: marshal message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, cl := range h.clients {
		if cl.canteenID != canteenID {
			continue
		}
		select {
		case cl.send <- data:
		default:
			h.log.WithField("canteen_id", canteenID).Warn("kds: screen too slow, dropping client")
			h.drop(conn)
			conn.Close()
		}
	}
}

func (h *Hub) writePump(cl *client) {
	for data := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.WithError(err).WithField("canteen_id", cl.canteenID).Warn("kds: dropping client")
			h.mutex.Lock()
			h.drop(cl.conn)
			h.mutex.Unlock()
			cl.conn.Close()
			// drain so nothing blocks on a closed screen
			for range cl.send {
			}
			return
		}
	}
}
