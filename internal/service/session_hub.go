package service

import (
	"context"
	"encoding/json"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/util"
	"hiring_tool_backend/pkg/logger"
	"hiring_tool_backend/pkg/monitoring"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64

	sessionChannel = "hiring_tool:session_events"
)

// 推送消息类型
const (
	MsgTick      = "tick"
	MsgSubmitted = "submitted"
	MsgRetake    = "retake"
	MsgStarted   = "started"
	MsgClosed    = "closed"
	MsgSnapshot  = "snapshot"
	msgSync      = "sync"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type     string      `json:"type"`
	Data     interface{} `json:"data,omitempty"`
	TimedOut bool        `json:"timedOut,omitempty"`
}

type TickPayload struct {
	RemainingSeconds int    `json:"remainingSeconds"`
	Formatted        string `json:"formatted"`
}

type hubClient struct {
	hub     *SessionHub
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

func (c *hubClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stop:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("WebSocket unexpected close", zap.Error(err))
			}
			break
		}

		if !c.limiter.Allow() {
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		// 客户端重连后主动拉取当前状态
		if msg.Type == msgSync {
			c.hub.sendSnapshot(c)
		}
	}
}

func (c *hubClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SessionHub 把当前测评的倒计时与提交结果推送给所有已连接的页面
type SessionHub struct {
	// Redis 非空时经 pub/sub 广播，多实例共享同一事件流
	Redis *redis.Client
	// Snapshot 返回当前会话快照，没有会话时 ok=false
	Snapshot func() (model.SessionSnapshot, bool)

	mu      sync.RWMutex
	clients map[*hubClient]bool

	register   chan *hubClient
	unregister chan *hubClient
	stop       chan struct{}
	stopOnce   sync.Once
	ctx        context.Context
}

func NewSessionHub(rdb *redis.Client) *SessionHub {
	return &SessionHub{
		Redis:      rdb,
		clients:    make(map[*hubClient]bool),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		stop:       make(chan struct{}),
		ctx:        context.Background(),
	}
}

func (h *SessionHub) Run() {
	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(h.ctx, sessionChannel)
		defer pubsub.Close()
		go func() {
			for msg := range pubsub.Channel() {
				h.pushLocal([]byte(msg.Payload))
			}
		}()
	}

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			monitoring.ActiveSessions.Inc()
			go h.sendSnapshot(c)
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				monitoring.ActiveSessions.Dec()
			}
			h.mu.Unlock()
		case <-h.stop:
			return
		}
	}
}

// Stop 关闭所有连接
func (h *SessionHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
		h.mu.Lock()
		n := len(h.clients)
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		h.mu.Unlock()
		monitoring.ActiveSessions.Set(0)
		logger.Log.Info("Session hub stopped", zap.Int("closedConnections", n))
	})
}

func (h *SessionHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *SessionHub) Broadcast(msg WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("Session event marshal failed", zap.Error(err))
		return
	}
	if h.Redis != nil {
		if err := h.Redis.Publish(h.ctx, sessionChannel, payload).Err(); err == nil {
			return
		}
		logger.Log.Warn("Session event publish failed, delivering locally")
	}
	h.pushLocal(payload)
}

// pushLocal 慢客户端直接丢弃本条消息
func (h *SessionHub) pushLocal(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

func (h *SessionHub) BroadcastTick(remaining int) {
	h.Broadcast(WSMessage{
		Type: MsgTick,
		Data: TickPayload{RemainingSeconds: remaining, Formatted: util.FormatRemainingTime(remaining)},
	})
}

func (h *SessionHub) BroadcastSubmitted(result *model.TestResult, timedOut bool) {
	h.Broadcast(WSMessage{Type: MsgSubmitted, Data: result, TimedOut: timedOut})
}

func (h *SessionHub) sendSnapshot(c *hubClient) {
	if h.Snapshot == nil {
		return
	}
	snap, ok := h.Snapshot()
	if !ok {
		return
	}
	payload, err := json.Marshal(WSMessage{Type: MsgSnapshot, Data: snap})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.clients[c] {
		select {
		case c.send <- payload:
		default:
		}
	}
}

func (h *SessionHub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	c := &hubClient{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	select {
	case h.register <- c:
	case <-h.stop:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
