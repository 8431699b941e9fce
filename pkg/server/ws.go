package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/geom"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 16
)

// Message types on the websocket.
const (
	MsgSnapshot = "snapshot"
	MsgClick    = "click"
	MsgHover    = "hover"
	MsgTag      = "tag"
	MsgZoom     = "zoom"
	MsgSelect   = "select"
	MsgError    = "error"
)

// Message is one websocket frame. Servers send snapshots and errors;
// clients send input commands.
type Message struct {
	Type     string            `json:"type"`
	Snapshot *collage.Snapshot `json:"snapshot,omitempty"`
	X        float64           `json:"x,omitempty"`
	Y        float64           `json:"y,omitempty"`
	Quick    *bool             `json:"quick,omitempty"`
	Text     string            `json:"text,omitempty"`
	ID       string            `json:"id,omitempty"`
	Factor   float64           `json:"factor,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// hub fans snapshots out to connected clients.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *log.Logger
}

func newHub(logger *log.Logger) *hub {
	return &hub{clients: make(map[*client]struct{}), logger: logger}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.logger.Debug("websocket client connected", "client", c.id, "clients", len(h.clients))
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.logger.Debug("websocket client disconnected", "client", c.id, "clients", len(h.clients))
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast queues data for every client, dropping it for clients that are
// behind.
func (h *hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("client send buffer full, dropping snapshot", "client", c.id)
		}
	}
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// stream samples the scene at StreamFPS and broadcasts it while anyone
// listens.
func (s *Server) stream(ctx context.Context) {
	t := time.NewTicker(time.Second / time.Duration(s.opts.StreamFPS))
	defer t.Stop()
	var last uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if s.hub.len() == 0 {
			continue
		}
		snap, err := s.snapshot(ctx)
		if err != nil {
			continue
		}
		if snap.Frame == last {
			continue
		}
		last = snap.Frame
		data, err := json.Marshal(Message{Type: MsgSnapshot, Snapshot: &snap})
		if err != nil {
			s.logger.Error("marshal snapshot", "err", err)
			continue
		}
		s.hub.broadcast(data)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.opts.OriginPatterns,
	})
	if err != nil {
		s.logger.Error("websocket accept", "err", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	s.hub.add(c)

	ctx := r.Context()
	go s.writePump(ctx, c)
	s.readPump(ctx, c)
}

func (s *Server) readPump(ctx context.Context, c *client) {
	defer func() {
		s.hub.remove(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()
	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				s.logger.Debug("websocket read", "client", c.id, "err", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("invalid websocket message", "client", c.id, "err", err)
			continue
		}
		if err := s.command(ctx, msg); err != nil {
			s.reply(c, Message{Type: MsgError, Error: err.Error()})
		}
	}
}

func (s *Server) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				s.logger.Debug("websocket write", "client", c.id, "err", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) reply(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if _, ok := s.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// command applies a client message on the loop goroutine.
func (s *Server) command(ctx context.Context, msg Message) error {
	switch msg.Type {
	case MsgClick:
		quick := msg.Quick == nil || *msg.Quick
		return s.loop.Call(ctx, func(c *collage.Collage) { c.Click(geom.Pt(msg.X, msg.Y), quick) })
	case MsgHover:
		return s.loop.Call(ctx, func(c *collage.Collage) { c.Hover(geom.Pt(msg.X, msg.Y)) })
	case MsgSelect:
		return s.loop.Call(ctx, func(c *collage.Collage) {
			if it := c.FindItem(msg.ID); it != nil {
				c.Select(it)
			}
		})
	case MsgZoom:
		if msg.Factor <= 0 {
			return errInvalidFactor
		}
		return s.loop.Call(ctx, func(c *collage.Collage) { c.Viewport().ZoomBy(msg.Factor) })
	case MsgTag:
		if msg.Text == "" {
			return errMissingText
		}
		if !s.loop.SearchTag(msg.Text) {
			return collage.ErrLoopStopped
		}
		return nil
	default:
		return errUnknownMessage(msg.Type)
	}
}
