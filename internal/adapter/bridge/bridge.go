package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/rpkit/shop-ui/internal/core/domain"
	"github.com/rpkit/shop-ui/internal/core/port"
)

var _ port.PurchaseGateway = (*Bridge)(nil)

var (
	ErrRuntimeGone      = errors.New("game runtime is not connected")
	ErrPurchaseRejected = errors.New("purchase rejected by the game runtime")
	ErrNotAttached      = errors.New("bridge is not attached to a session")
)

// Bridge is the websocket link to the game runtime. The runtime pushes
// catalog snapshots and visibility toggles inbound; the engine sends
// hide notifications and correlated purchase requests outbound. One
// runtime connection is live at a time; a newer connection replaces the
// old one and fails its outstanding purchases.
type Bridge struct {
	upgrader websocket.Upgrader

	snapshots  port.SnapshotReceiver
	visibility port.VisibilityReceiver

	mu      sync.Mutex // guards conn, pending and writes
	conn    *websocket.Conn
	pending map[string]chan error
	nextID  atomic.Uint64
}

func New() *Bridge {
	return &Bridge{
		pending: make(map[string]chan error),
	}
}

// Attach wires the inbound event receivers. Must be called before the
// bridge starts serving; the session depends on the bridge for its
// gateway, so the two are connected in this second step.
func (b *Bridge) Attach(
	snapshots port.SnapshotReceiver, visibility port.VisibilityReceiver,
) {
	b.snapshots = snapshots
	b.visibility = visibility
}

// Register mounts the runtime endpoint on the mux.
func Register(mux *http.ServeMux, b *Bridge) {
	mux.HandleFunc("GET /v1/runtime", b.HandleRuntime)
}

// HandleRuntime upgrades the connection and pumps runtime events until
// the connection drops.
func (b *Bridge) HandleRuntime(w http.ResponseWriter, r *http.Request) {
	const op = "Bridge.HandleRuntime"
	log := slog.With("op", op)

	if b.snapshots == nil || b.visibility == nil {
		log.Error("bridge serving before Attach", "err", ErrNotAttached)
		http.Error(w, "bridge unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("failed to upgrade runtime connection", "err", err)
		return
	}

	b.attach(conn)
	log.Info("game runtime connected", "remote", conn.RemoteAddr().String())

	b.readLoop(conn)

	b.detach(conn)
	log.Info("game runtime disconnected")
}

func (b *Bridge) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		b.dispatch(data)
	}
}

func (b *Bridge) dispatch(data []byte) {
	const op = "Bridge.dispatch"
	log := slog.With("op", op)

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn("malformed runtime message", "err", err)
		return
	}

	switch env.Type {
	case typeShopData:
		snap, err := ParseShopData(env.Payload)
		if err != nil {
			log.Warn("malformed shop data", "err", err)
			return
		}
		b.snapshots.ReplaceCatalog(snap)

	case typeVisibility:
		var visible bool
		if err := json.Unmarshal(env.Payload, &visible); err != nil {
			log.Warn("malformed visibility toggle", "err", err)
			return
		}
		b.visibility.SetVisible(visible)

	case typePurchaseResult:
		var res purchaseResult
		if err := json.Unmarshal(env.Payload, &res); err != nil {
			log.Warn("malformed purchase result", "id", env.ID, "err", err)
			return
		}
		b.settle(env.ID, res)

	default:
		log.Debug("ignoring runtime message", "type", env.Type)
	}
}

// SendPurchase delivers the purchase request and blocks until the
// runtime settles it, the connection drops, or ctx expires.
func (b *Bridge) SendPurchase(
	ctx context.Context, req domain.PurchaseRequest,
) error {
	const op = "Bridge.SendPurchase"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	id := strconv.FormatUint(b.nextID.Add(1), 10)
	ch := make(chan error, 1)

	payload, err := json.Marshal(purchaseToWire(req))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	env := envelope{Type: typePurchase, ID: id, Payload: payload}

	b.mu.Lock()
	if b.conn == nil {
		b.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrRuntimeGone)
	}
	b.pending[id] = ch
	err = b.conn.WriteJSON(env)
	b.mu.Unlock()

	if err != nil {
		b.forget(id)
		return fmt.Errorf("%s: %w", op, err)
	}

	select {
	case err := <-ch:
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
		b.forget(id)
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}
}

// NotifyHide asks the runtime to dismiss the UI. Fire-and-forget: a
// write failure is logged and swallowed.
func (b *Bridge) NotifyHide(ctx context.Context) {
	const op = "Bridge.NotifyHide"

	if err := ctx.Err(); err != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		slog.Warn("hide notification dropped", "op", op, "err", ErrRuntimeGone)
		return
	}
	if err := b.conn.WriteJSON(envelope{Type: typeHide}); err != nil {
		slog.Warn("failed to send hide notification", "op", op, "err", err)
	}
}

// Close drops the runtime connection and fails outstanding purchases.
func (b *Bridge) Close() {
	const op = "Bridge.Close"
	log := slog.With("op", op)

	log.Info("closing runtime bridge...")
	b.mu.Lock()
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
	b.failPendingLocked()
	b.mu.Unlock()
	log.Info("runtime bridge is closed")
}

func (b *Bridge) attach(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		_ = b.conn.Close()
	}
	b.failPendingLocked()
	b.conn = conn
}

func (b *Bridge) detach(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_ = conn.Close()
	// a replacement connection may already be live
	if b.conn != conn {
		return
	}
	b.conn = nil
	b.failPendingLocked()
}

func (b *Bridge) forget(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}

func (b *Bridge) failPendingLocked() {
	for id, ch := range b.pending {
		ch <- ErrRuntimeGone
		delete(b.pending, id)
	}
}

func (b *Bridge) settle(id string, res purchaseResult) {
	b.mu.Lock()
	ch, ok := b.pending[id]
	delete(b.pending, id)
	b.mu.Unlock()

	if !ok {
		slog.Warn("settlement for unknown purchase", "id", id)
		return
	}

	if res.OK {
		ch <- nil
		return
	}
	if res.Error != "" {
		ch <- fmt.Errorf("%w: %s", ErrPurchaseRejected, res.Error)
		return
	}
	ch <- ErrPurchaseRejected
}
