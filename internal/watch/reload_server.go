package watch

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Reload message types
const (
	MessageReload    = "reload"
	MessageAnalyzing = "analyzing"
	MessageError     = "error"
)

// ReloadServer manages WebSocket connections for live reload
type ReloadServer struct {
	connections map[*websocket.Conn]bool
	broadcast   chan *ReloadMessage
	register    chan *websocket.Conn
	unregister  chan *websocket.Conn
	done        chan struct{}
	closeOnce   sync.Once
	mutex       sync.RWMutex
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// ReloadMessage is sent to browsers when the report changes
type ReloadMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	// BuildID identifies the analysis a reload points at
	BuildID   string     `json:"buildId,omitempty"`
	Timestamp int64      `json:"timestamp"`
	Files     []string   `json:"files,omitempty"`
	Duration  float64    `json:"duration,omitempty"` // milliseconds
	Error     *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failed re-analysis
type ErrorInfo struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Code    string `json:"code,omitempty"`
	Path    string `json:"path,omitempty"`
}

// NewReloadServer creates a new reload server
func NewReloadServer(logger *zap.Logger) *ReloadServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	rs := &ReloadServer{
		connections: make(map[*websocket.Conn]bool),
		broadcast:   make(chan *ReloadMessage, 256),
		register:    make(chan *websocket.Conn),
		unregister:  make(chan *websocket.Conn),
		done:        make(chan struct{}),
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:     localOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	go rs.run()

	return rs
}

// localOrigin only accepts same-origin and loopback pages
func localOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1") ||
		strings.HasPrefix(origin, "https://127.0.0.1")
}

func (rs *ReloadServer) run() {
	for {
		select {
		case <-rs.done:
			rs.logger.Debug("reload server stopped")
			return

		case conn := <-rs.register:
			rs.mutex.Lock()
			rs.connections[conn] = true
			total := len(rs.connections)
			rs.mutex.Unlock()
			rs.logger.Info("browser connected", zap.Int("total", total))

		case conn := <-rs.unregister:
			rs.mutex.Lock()
			if _, ok := rs.connections[conn]; ok {
				delete(rs.connections, conn)
				conn.Close()
			}
			total := len(rs.connections)
			rs.mutex.Unlock()
			rs.logger.Info("browser disconnected", zap.Int("total", total))

		case message := <-rs.broadcast:
			rs.sendToAll(message)
		}
	}
}

func (rs *ReloadServer) sendToAll(message *ReloadMessage) {
	messageJSON, err := json.Marshal(message)
	if err != nil {
		rs.logger.Error("failed to marshal reload message", zap.Error(err))
		return
	}

	rs.mutex.RLock()
	var failedConns []*websocket.Conn
	for conn := range rs.connections {
		if err := conn.WriteMessage(websocket.TextMessage, messageJSON); err != nil {
			rs.logger.Warn("failed to send reload message", zap.Error(err))
			failedConns = append(failedConns, conn)
		}
	}
	rs.mutex.RUnlock()

	if len(failedConns) > 0 {
		rs.mutex.Lock()
		for _, conn := range failedConns {
			if _, ok := rs.connections[conn]; ok {
				conn.Close()
				delete(rs.connections, conn)
			}
		}
		rs.mutex.Unlock()
	}
}

// HandleWebSocket upgrades HTTP connections to WebSocket
func (rs *ReloadServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := rs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rs.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	select {
	case rs.register <- conn:
	case <-rs.done:
		conn.Close()
		return
	}

	go rs.readMessages(conn)
}

// readMessages drains the client side until it goes away
func (rs *ReloadServer) readMessages(conn *websocket.Conn) {
	defer func() {
		select {
		case rs.unregister <- conn:
		case <-rs.done:
		}
	}()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				rs.logger.Warn("websocket error", zap.Error(err))
			}
			return
		}
	}
}

func (rs *ReloadServer) send(message *ReloadMessage) {
	message.ID = uuid.NewString()
	message.Timestamp = time.Now().Unix()

	select {
	case rs.broadcast <- message:
	case <-rs.done:
	}
}

// NotifyAnalyzing tells browsers that files changed and a new analysis is
// running
func (rs *ReloadServer) NotifyAnalyzing(files []string) {
	rs.send(&ReloadMessage{Type: MessageAnalyzing, Files: files})
}

// NotifyReload tells browsers to fetch the report for buildID
func (rs *ReloadServer) NotifyReload(buildID string, duration time.Duration) {
	rs.send(&ReloadMessage{
		Type:     MessageReload,
		BuildID:  buildID,
		Duration: float64(duration.Milliseconds()),
	})
}

// NotifyError tells browsers that the changed metafile could not be analyzed
func (rs *ReloadServer) NotifyError(info *ErrorInfo) {
	rs.send(&ReloadMessage{Type: MessageError, Error: info})
}

// ConnectionCount returns the number of active connections
func (rs *ReloadServer) ConnectionCount() int {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()
	return len(rs.connections)
}

// Close closes all connections and stops the server
func (rs *ReloadServer) Close() {
	rs.closeOnce.Do(func() {
		close(rs.done)

		rs.mutex.Lock()
		defer rs.mutex.Unlock()

		for conn := range rs.connections {
			conn.Close()
		}
		rs.connections = make(map[*websocket.Conn]bool)
	})
}
