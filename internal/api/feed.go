package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = (feedPongWait * 9) / 10
	feedBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedMessage is a frame sent to order feed subscribers
type FeedMessage struct {
	Type  string        `json:"type"`
	Data  string        `json:"data,omitempty"`
	Order *models.Order `json:"order,omitempty"`
}

// OrderFeed fans newly created orders out to websocket subscribers
type OrderFeed struct {
	mu          sync.Mutex
	subscribers map[chan []byte]struct{}
}

// NewOrderFeed creates an empty feed
func NewOrderFeed() *OrderFeed {
	return &OrderFeed{subscribers: make(map[chan []byte]struct{})}
}

// Subscribe registers a buffered channel that receives encoded frames.
// The returned func removes it and closes the channel.
func (f *OrderFeed) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, feedBuffer)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, ch)
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of connected subscribers
func (f *OrderFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

// Publish sends order to every subscriber. Slow subscribers miss frames
// rather than block order creation.
func (f *OrderFeed) Publish(order *models.Order) {
	data, err := json.Marshal(FeedMessage{Type: "order", Order: order})
	if err != nil {
		slog.Error("failed to marshal feed message", "error", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subscribers {
		select {
		case ch <- data:
		default:
			slog.Warn("order feed subscriber lagging, frame dropped", "order_id", order.ID)
		}
	}
}

func (s *Server) handleOrderFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	client := callerName(r.Context())

	frames, unsubscribe := s.feed.Subscribe()
	defer unsubscribe()

	slog.Info("order feed connected", "client", client)

	if err := sendFeedMessage(conn, FeedMessage{Type: "connected", Data: "Subscribed to new orders"}); err != nil {
		return
	}

	// Read side: only control frames are expected, a read error means the peer left
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(feedPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(feedPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("order feed read error", "error", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			slog.Info("order feed disconnected", "client", client)
			return
		case <-r.Context().Done():
			return
		case data, ok := <-frames:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("failed to send feed message", "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func sendFeedMessage(conn *websocket.Conn, msg FeedMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal feed message", "error", err)
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send feed message", "error", err)
		return err
	}
	return nil
}
