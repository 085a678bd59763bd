package editor

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 256
)

// connection оборачивает websocket-соединение клиента редактора
type connection struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
}

func newConnection(ws *websocket.Conn) *connection {
	return &connection{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan []byte, sendBuffer),
	}
}

// readPump читает сообщения, пока соединение не закроется
func (c *connection) readPump(handle func(data []byte)) error {
	defer c.ws.Close()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return err
			}
			return nil
		}
		handle(data)
	}
}

// writePump отправляет очередь send и пинги. Завершается, когда send
// закрыт или запись не удалась.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue ставит сообщение в очередь. Медленный клиент с полной
// очередью отключается.
func (c *connection) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.ws.Close()
	}
}

// hub подключённые клиенты редактора
type hub struct {
	mu      sync.RWMutex
	clients map[string]*connection
}

func newHub() *hub {
	return &hub{clients: make(map[string]*connection)}
}

func (h *hub) add(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

// remove закрывает очередь клиента; writePump после этого завершится
func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.send)
	}
}

// send отправляет сообщение одному клиенту, если он ещё подключён
func (h *hub) send(id string, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[id]; ok {
		c.enqueue(data)
	}
	return nil
}

func (h *hub) broadcast(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.enqueue(data)
	}
	return nil
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}
