package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"jig_platform_backend/internal/bridge"
	"jig_platform_backend/pkg/logger"
	"jig_platform_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // bodies ride inside session envelopes
	presenceTTL    = 2 * time.Minute
)

var (
	// 内存复用 (sync.Pool)
	envelopePool = sync.Pool{
		New: func() interface{} {
			return &SessionEnvelope{}
		},
	}
)


// SessionEnvelope mirrors the iframe message envelope: a kind tag plus an
// opaque payload relayed untouched to the other participants.
type SessionEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SessionClient is one websocket participant in a module editing session.
type SessionClient struct {
	Hub     *SessionHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  uint
	Room    string
	Limiter *rate.Limiter // 限流器
}

func (c *SessionClient) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.Uint("userId", c.UserID))
			}
			break
		}

		// 限流校验 (每秒最多 30 条消息，允许突发 50 条)
		if !c.Limiter.Allow() {
			continue
		}

		env := envelopePool.Get().(*SessionEnvelope)
		if err := json.Unmarshal(message, env); err != nil {
			envelopePool.Put(env)
			continue
		}
		if env.Kind == "" {
			envelopePool.Put(env)
			continue
		}

		monitoring.SessionMessageCounter.WithLabelValues(env.Kind, "in").Inc()
		c.Hub.Relay(c.Room, c.UserID, message)
		envelopePool.Put(env)
	}
}

func (c *SessionClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if n := len(c.Send); n > 0 {
				for i := 0; i < n; i++ {
					w.Write(<-c.Send)
				}
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type sessionRoom struct {
	clients map[*SessionClient]bool
}

// SessionHub relays editing session traffic between participants looking at
// the same draft module: presence, dirty-state changes, preview requests.
// Rooms are keyed by activity id + module id; redis pubsub fans messages
// out across instances.
type SessionHub struct {
	mu         sync.RWMutex
	rooms      map[string]*sessionRoom
	register   chan *SessionClient
	unregister chan *SessionClient
	Redis      *redis.Client
	origins    *bridge.OriginAllowlist
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewSessionHub(rdb *redis.Client, allowedOrigins []string) *SessionHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionHub{
		rooms:      make(map[string]*sessionRoom),
		register:   make(chan *SessionClient),
		unregister: make(chan *SessionClient),
		Redis:      rdb,
		origins:    bridge.NewOriginAllowlist(allowedOrigins),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// originAllowed gates the websocket upgrade: browser frames must come from
// an allowed origin, non-browser clients send no Origin header and are
// admitted (they still need a valid token).
func (h *SessionHub) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return h.origins.Allowed(origin)
}

// SessionRoomKey 会话房间键
func SessionRoomKey(activityID, moduleID string) string {
	return activityID + "/" + moduleID
}

type sessionPubSubMessage struct {
	Room     string          `json:"room"`
	SenderID uint            `json:"senderId"`
	Payload  json.RawMessage `json:"payload"`
}

func (h *SessionHub) Run() {
	var pubsubCh <-chan *redis.Message
	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(h.ctx, "session_channel")
		pubsubCh = pubsub.Channel()
	}

	heartbeatTicker := time.NewTicker(1 * time.Minute)
	defer heartbeatTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.Room]
			if !ok {
				room = &sessionRoom{clients: make(map[*SessionClient]bool)}
				h.rooms[client.Room] = room
			}
			room.clients[client] = true
			h.mu.Unlock()
			h.setPresence(client, true)
			monitoring.SessionOnlineUsers.Inc()

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.Room]; ok {
				if _, ok := room.clients[client]; ok {
					delete(room.clients, client)
					close(client.Send)
					monitoring.SessionOnlineUsers.Dec()
				}
				if len(room.clients) == 0 {
					delete(h.rooms, client.Room)
				}
			}
			h.mu.Unlock()
			h.setPresence(client, false)

		case <-heartbeatTicker.C:
			h.refreshPresence()

		case msg, ok := <-pubsubCh:
			if !ok {
				pubsubCh = nil
				continue
			}
			var psMsg sessionPubSubMessage
			if err := json.Unmarshal([]byte(msg.Payload), &psMsg); err != nil {
				logger.Log.Error("PubSub unmarshal error", zap.Error(err))
				continue
			}
			h.relayLocal(psMsg.Room, psMsg.SenderID, psMsg.Payload)

		case <-h.ctx.Done():
			return
		}
	}
}

// Relay fans a raw envelope out to every other participant in the room.
func (h *SessionHub) Relay(room string, senderID uint, payload []byte) {
	if h.Redis != nil {
		psMsg := sessionPubSubMessage{Room: room, SenderID: senderID, Payload: payload}
		raw, _ := json.Marshal(psMsg)
		h.Redis.Publish(h.ctx, "session_channel", raw)
	} else {
		h.relayLocal(room, senderID, payload)
	}
	monitoring.SessionMessageCounter.WithLabelValues("relay", "out").Inc()
}

func (h *SessionHub) relayLocal(roomKey string, senderID uint, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[roomKey]
	if !ok {
		return
	}
	for client := range room.clients {
		if client.UserID == senderID {
			continue
		}
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// Participants 房间当前的本地参与人数
func (h *SessionHub) Participants(roomKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[roomKey]; ok {
		return len(room.clients)
	}
	return 0
}

func (h *SessionHub) setPresence(client *SessionClient, online bool) {
	if h.Redis == nil {
		return
	}
	key := presenceKey(client.Room, client.UserID)
	if online {
		if err := h.Redis.Set(h.ctx, key, "true", presenceTTL).Err(); err != nil {
			logger.Log.Error("presence set error", zap.Error(err))
		}
	} else {
		h.Redis.Del(h.ctx, key)
	}
}

// refreshPresence 刷新当前实例所有在线参与者的过期时间
func (h *SessionHub) refreshPresence() {
	if h.Redis == nil {
		return
	}
	pipe := h.Redis.Pipeline()
	count := 0
	h.mu.RLock()
	for roomKey, room := range h.rooms {
		for client := range room.clients {
			pipe.Expire(h.ctx, presenceKey(roomKey, client.UserID), presenceTTL)
			count++
		}
	}
	h.mu.RUnlock()
	if count > 0 {
		pipe.Exec(h.ctx)
		logger.Log.Debug("Refreshed session presence", zap.Int("count", count))
	}
}

// Stop 关闭所有连接并清理在线状态
func (h *SessionHub) Stop() {
	logger.Log.Info("SessionHub stopping: clearing presence and closing connections...")

	closed := 0
	var keys []string
	h.mu.Lock()
	for roomKey, room := range h.rooms {
		for client := range room.clients {
			keys = append(keys, presenceKey(roomKey, client.UserID))
			close(client.Send)
			closed++
		}
		delete(h.rooms, roomKey)
	}
	h.mu.Unlock()

	if h.Redis != nil && len(keys) > 0 {
		pipe := h.Redis.Pipeline()
		for _, key := range keys {
			pipe.Del(h.ctx, key)
		}
		pipe.Exec(h.ctx)
	}

	h.cancel()
	monitoring.SessionOnlineUsers.Set(0)
	logger.Log.Info("SessionHub stopped", zap.Int("closedConnections", closed))
}

func presenceKey(roomKey string, userID uint) string {
	return fmt.Sprintf("session:online:%s:%d", roomKey, userID)
}

func ServeSessionWs(hub *SessionHub, w http.ResponseWriter, r *http.Request, userID uint, room string) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     hub.originAllowed,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	client := &SessionClient{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		UserID:  userID,
		Room:    room,
		Limiter: rate.NewLimiter(rate.Limit(30), 50), // 每秒30条，允许突发50条
	}
	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}
