package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 2 * time.Second

// ClientMsg é a única mensagem aceita do cliente
type ClientMsg struct {
	Type string `json:"type"` // ping
}

// client é uma conexão aberta; gorilla não aceita writers concorrentes na mesma conexão
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub mantém as salas por usuário: user_id -> conexões abertas
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	mu       sync.RWMutex
	rooms    map[string]map[*client]struct{}
}

// NewHub cria o hub com política de origem customizada
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		rooms:    make(map[string]map[*client]struct{}),
	}
}

// HandleWS entra a conexão na sala do user_id da query e responde pings
// até o cliente desconectar
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	h.join(userID, c)
	defer h.leave(userID, c)

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			h.write(c, []byte(`{"type":"pong"}`))
		}
	}
}

// Deliver envia o payload para todas as conexões da sala do usuário
func (h *Hub) Deliver(userID string, payload []byte) int {
	h.mu.RLock()
	conns := make([]*client, 0, len(h.rooms[userID]))
	for c := range h.rooms[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		h.write(c, payload)
	}
	return len(conns)
}

// Connections retorna quantas conexões a sala tem
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

func (h *Hub) join(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[userID]; !ok {
		h.rooms[userID] = make(map[*client]struct{})
	}
	h.rooms[userID][c] = struct{}{}
}

func (h *Hub) leave(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.rooms[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, userID)
		}
	}
}

// write serializa as escritas de uma conexão; conexões diferentes não se esperam
func (h *Hub) write(c *client, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.log.Debug("ws write failed", zap.Error(err))
	}
}
