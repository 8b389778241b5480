package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/LefterisXris/brew-bean-app/internal/basket"
	"github.com/LefterisXris/brew-bean-app/internal/checkout"
	"github.com/LefterisXris/brew-bean-app/internal/coffee"
	"github.com/LefterisXris/brew-bean-app/internal/http/dto"
	"github.com/LefterisXris/brew-bean-app/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// StreamHandler pushes basket and checkout changes to connected clients.
type StreamHandler struct {
	ctx      context.Context
	store    *basket.Store
	flow     *checkout.Flow
	metrics  *metrics.Metrics
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewStreamHandler closes every connection once ctx is done; hijacked
// connections are not closed by http.Server.Shutdown.
func NewStreamHandler(ctx context.Context, store *basket.Store, flow *checkout.Flow, m *metrics.Metrics, logger *slog.Logger, allowOrigins []string) *StreamHandler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &StreamHandler{
		ctx:     ctx,
		store:   store,
		flow:    flow,
		metrics: m,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowOrigins),
		},
	}
}

func (h *StreamHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	h.metrics.StreamConnected()
	defer h.metrics.StreamDisconnected()

	q := newFrameQueue()
	// Subscribe before queueing the snapshots so no change falls between them.
	st, cancelCheckout := h.flow.Subscribe(func(s checkout.Status) { q.push(checkoutFrame(s)) })
	defer cancelCheckout()
	items, cancelBasket := h.store.Subscribe(func(items []coffee.BasketItem) { q.push(basketFrame(items)) })
	defer cancelBasket()
	q.pushFront(checkoutFrame(st))
	q.pushFront(basketFrame(items))

	closed := make(chan struct{})
	go h.readPump(conn, closed)
	h.writePump(conn, q, closed)
}

// readPump drains client messages so pongs and close frames are seen.
func (h *StreamHandler) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", "err", err)
			}
			return
		}
	}
}

func (h *StreamHandler) writePump(conn *websocket.Conn, q *frameQueue, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		for _, f := range q.drain() {
			body, err := json.Marshal(f)
			if err != nil {
				h.logger.Error("encode stream frame", "type", f.Type, "err", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
				return
			}
		}

		select {
		case <-q.wake:
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-h.ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}

func basketFrame(items []coffee.BasketItem) dto.StreamFrame {
	b := dto.NewBasket(items)
	return dto.StreamFrame{Type: dto.FrameBasket, Basket: &b}
}

func checkoutFrame(s checkout.Status) dto.StreamFrame {
	return dto.StreamFrame{Type: dto.FrameCheckout, Checkout: &s}
}

// frameQueue holds at most one pending frame per type. A newer frame
// replaces a pending one of the same type, so a slow client only skips
// intermediate states.
type frameQueue struct {
	mu      sync.Mutex
	pending []dto.StreamFrame
	wake    chan struct{}
}

func newFrameQueue() *frameQueue {
	return &frameQueue{wake: make(chan struct{}, 1)}
}

func (q *frameQueue) push(f dto.StreamFrame) {
	q.mu.Lock()
	replaced := false
	for i := range q.pending {
		if q.pending[i].Type == f.Type {
			q.pending[i] = f
			replaced = true
			break
		}
	}
	if !replaced {
		q.pending = append(q.pending, f)
	}
	q.mu.Unlock()
	q.signal()
}

// pushFront queues f ahead of anything pending unless a newer frame of the
// same type is already waiting.
func (q *frameQueue) pushFront(f dto.StreamFrame) {
	q.mu.Lock()
	for _, p := range q.pending {
		if p.Type == f.Type {
			q.mu.Unlock()
			return
		}
	}
	q.pending = append([]dto.StreamFrame{f}, q.pending...)
	q.mu.Unlock()
	q.signal()
}

func (q *frameQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *frameQueue) drain() []dto.StreamFrame {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

func originChecker(allow []string) func(r *http.Request) bool {
	allowAll := len(allow) == 1 && allow[0] == "*"
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		for _, a := range allow {
			if strings.EqualFold(strings.TrimSpace(a), origin) {
				return true
			}
		}
		return false
	}
}
