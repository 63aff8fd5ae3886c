package echoapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/timeac/core"
	"github.com/trezcool/timeac/core/display"
	"github.com/trezcool/timeac/core/schedule"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 8
)

type (
	// hub pushes every changed resolution to the connected display clients.
	hub struct {
		monitor     *display.Monitor
		log         core.Logger
		upgrader    websocket.Upgrader
		unsubscribe func()

		mutex   sync.Mutex
		clients map[string]*wsClient
		closed  bool
	}

	wsClient struct {
		id   string
		conn *websocket.Conn
		send chan DisplayResponse
	}
)

func newHub(monitor *display.Monitor, log core.Logger) *hub {
	h := &hub{
		monitor: monitor,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[string]*wsClient),
	}
	h.unsubscribe = monitor.Subscribe(h.broadcast)
	return h
}

// broadcast never blocks: a client whose buffer is full misses the update.
func (h *hub) broadcast(res schedule.Resolution) {
	resp := newDisplayResponse(res)

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, c := range h.clients {
		select {
		case c.send <- resp:
		default:
			h.log.Warn("display client too slow, update dropped", map[string]interface{}{"client": c.id})
		}
	}
}

func (h *hub) register(c *wsClient) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *hub) unregister(c *wsClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

func (h *hub) count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *hub) serve(ctx echo.Context) error {
	conn, err := h.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// the upgrader already replied to the client
		return errors.Wrap(err, "upgrading display connection")
	}

	c := &wsClient{id: uuid.NewString(), conn: conn, send: make(chan DisplayResponse, sendBuffer)}
	c.send <- newDisplayResponse(h.monitor.Current())
	if !h.register(c) {
		_ = conn.Close()
		return nil
	}

	go h.writePump(c)
	h.readPump(c)
	return nil
}

// readPump discards incoming messages and unregisters the client once the connection fails.
func (h *hub) readPump(c *wsClient) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case resp, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(resp); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close disconnects every client and stops listening to the monitor.
func (h *hub) close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.unsubscribe()
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}
