// Package realtime delivers newly persisted chat messages to connected
// viewers. Delivery is fire-and-forget: no ack, no retry, no backlog for
// late subscribers. Durability lives in the message row, not here.
package realtime

import (
	"sync"
	"time"

	"github.com/campusswap/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 90 * time.Second
	pingPeriod     = 25 * time.Second
	sendBufferSize = 16
)

// MessageEvent is the wire shape pushed to subscribers of a chat group.
type MessageEvent struct {
	Type        string    `json:"type"`
	ID          uint      `json:"id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	AuthorID    uint      `json:"author_id"`
	AuthorAlias string    `json:"author_alias"`
}

// Client is one websocket subscription to a single chat group.
type Client struct {
	id     uuid.UUID
	chatID uint
	userID uint
	conn   *websocket.Conn
	send   chan MessageEvent
}

// Hub maintains one broadcast group per chat id. Join/leave/broadcast
// are safe under concurrent access.
type Hub struct {
	mu     sync.RWMutex
	groups map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		groups: make(map[uint]map[*Client]struct{}),
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.groups[c.chatID]
	if !ok {
		group = make(map[*Client]struct{})
		h.groups[c.chatID] = group
	}
	group[c] = struct{}{}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if group, ok := h.groups[c.chatID]; ok {
		delete(group, c)
		if len(group) == 0 {
			delete(h.groups, c.chatID)
		}
	}
}

// Subscribers reports how many connections are watching a chat.
func (h *Hub) Subscribers(chatID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[chatID])
}

// Broadcast pushes an event to every live subscriber of the chat group.
// Clients whose send buffer is full are skipped rather than blocked on;
// they recover missed history through the message list endpoint.
func (h *Hub) Broadcast(chatID uint, ev MessageEvent) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.groups[chatID]))
	for c := range h.groups[chatID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- ev:
		default:
			logger.Warn("realtime: dropping event for slow subscriber on chat ", chatID)
		}
	}
}

// Serve registers the connection in the chat's group and blocks until
// the peer disconnects. The caller has already authenticated the user
// and verified participancy.
func (h *Hub) Serve(conn *websocket.Conn, chatID, userID uint) {
	client := &Client{
		id:     uuid.New(),
		chatID: chatID,
		userID: userID,
		conn:   conn,
		send:   make(chan MessageEvent, sendBufferSize),
	}
	h.add(client)
	logger.Debug("realtime: user ", userID, " joined chat ", chatID)

	go h.writerLoop(client)
	h.readerLoop(client)
}

func (h *Hub) writerLoop(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
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

func (h *Hub) readerLoop(c *Client) {
	// The send channel is never closed: Broadcast may hold a reference
	// to this client briefly after removal, and a send to a closed
	// channel would panic. Orphaned buffers are collected with the client.
	defer func() {
		h.remove(c)
		c.conn.Close()
		logger.Debug("realtime: user ", c.userID, " left chat ", c.chatID)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Clients send no payloads besides connect/disconnect; drain and
	// discard anything else until the connection closes.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
