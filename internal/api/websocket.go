package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"ironsight/internal/game"
)

const (
	// MaxWSConnectionsTotal is the global concurrent connection cap.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the per-IP concurrent connection cap.
	MaxWSConnectionsPerIP = 10

	// sendBufferSize is the per-client outbound queue. A client that cannot
	// keep up with the snapshot rate gets disconnected rather than applying
	// backpressure to the tick.
	sendBufferSize = 32

	writeTimeout = 5 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second

	maxInboundBytes = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// clientMessage is the inbound envelope. Type "join" binds the connection to
// a new player; "input" carries one predicted tick of intent.
type clientMessage struct {
	Type  string      `json:"type"`
	Name  string      `json:"name,omitempty"`
	Input *game.Input `json:"input,omitempty"`
}

// serverMessage is the outbound envelope.
type serverMessage struct {
	Type     string            `json:"type"`
	PlayerID string            `json:"playerId,omitempty"`
	TickRate int               `json:"tickRate,omitempty"`
	Arena    *game.Arena       `json:"arena,omitempty"`
	Self     *game.PlayerState `json:"self,omitempty"`
	Snapshot *game.Snapshot    `json:"snapshot,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// wsClient is one connected game client. Reads happen on the connection's
// read goroutine; writes go through the send channel to a single writer
// goroutine so no two goroutines ever write the conn concurrently.
type wsClient struct {
	conn     *websocket.Conn
	ip       string
	send     chan []byte
	playerID string // empty until joined

	inputLimiter *rate.Limiter
	closeOnce    sync.Once
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// WebSocketHub owns every game connection: join handling, input routing into
// the engine, and snapshot fan-out after each tick.
type WebSocketHub struct {
	engine     *game.Engine
	maxPlayers int
	inputsPS   int

	mu      sync.RWMutex
	clients map[*wsClient]bool

	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte

	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a hub bound to the engine. Run must be started
// before connections are accepted.
func NewWebSocketHub(engine *game.Engine, maxPlayers, inputsPerSecond int) *WebSocketHub {
	return &WebSocketHub{
		engine:     engine,
		maxPlayers: maxPlayers,
		inputsPS:   inputsPerSecond,
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 64),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// Run processes registration and broadcast traffic. Call in its own
// goroutine.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				h.wsLimiter.Release(client.ip)
				client.close()
			}
			count := len(h.clients)
			h.mu.Unlock()

			if client.playerID != "" {
				h.engine.RemovePlayer(client.playerID)
			}
			log.Printf("📱 Client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer: skip this frame for them.
					RecordSnapshotDropped()
				}
			}
			h.mu.RUnlock()
			IncrementWSMessages()
		}
	}
}

// BroadcastSnapshot marshals a snapshot once and queues it for every client.
// Wired as the engine's snapshot sink.
func (h *WebSocketHub) BroadcastSnapshot(snap game.Snapshot) {
	data, err := json.Marshal(serverMessage{Type: "snapshot", Snapshot: &snap})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		RecordSnapshotDropped()
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PlayerCount returns the number of clients bound to a player.
func (h *WebSocketHub) PlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		if c.playerID != "" {
			n++
		}
	}
	return n
}

// HandleWebSocket upgrades the request and runs the connection.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	client := &wsClient{
		conn:         conn,
		ip:           ip,
		send:         make(chan []byte, sendBufferSize),
		inputLimiter: rate.NewLimiter(rate.Limit(h.inputsPS), h.inputsPS/2+1),
	}
	h.register <- client

	go client.writeLoop()
	go h.readLoop(client)
}

func (c *wsClient) writeLoop() {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop parses inbound messages. Anything malformed is dropped and
// counted, never fatal to the connection; a hostile sender can only waste its
// own rate budget.
func (h *WebSocketHub) readLoop(client *wsClient) {
	defer func() {
		h.unregister <- client
	}()

	client.conn.SetReadLimit(maxInboundBytes)
	client.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			RecordInputDropped("malformed")
			continue
		}

		switch msg.Type {
		case "join":
			h.handleJoin(client, msg.Name)
		case "input":
			h.handleInput(client, msg.Input)
		default:
			RecordInputDropped("unknown_type")
		}
	}
}

func (h *WebSocketHub) handleJoin(client *wsClient, name string) {
	if client.playerID != "" {
		client.sendMessage(serverMessage{Type: "error", Error: "already joined"})
		return
	}
	if name == "" || len(name) > 32 {
		RecordInputDropped("bad_name")
		client.sendMessage(serverMessage{Type: "error", Error: "invalid name"})
		return
	}
	if players, _, _ := h.engine.Counts(); players >= h.maxPlayers {
		client.sendMessage(serverMessage{Type: "error", Error: "server full"})
		return
	}

	p := h.engine.AddPlayer(name)
	client.playerID = p.ID

	self := game.StateOf(p)
	client.sendMessage(serverMessage{
		Type:     "welcome",
		PlayerID: p.ID,
		TickRate: h.engine.TickRate(),
		Arena:    h.engine.Arena(),
		Self:     &self,
	})
}

func (h *WebSocketHub) handleInput(client *wsClient, in *game.Input) {
	if client.playerID == "" || in == nil {
		RecordInputDropped("no_player")
		return
	}
	if !client.inputLimiter.Allow() {
		RecordInputDropped("rate_limit")
		return
	}

	input := *in
	input.Sanitize()
	if !h.engine.QueueInput(client.playerID, input) {
		RecordInputDropped("stale_seq")
	}
}

func (c *wsClient) sendMessage(msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
