package provider

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/pkg/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RealtimeConfig controls the websocket connection carrying auth events
// pushed by the backend (sign-in from another device, token refresh,
// remote sign-out).
type RealtimeConfig struct {
	Enabled      bool
	PingInterval time.Duration
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// wireAuthEvent is the frame format of the backend's auth channel.
type wireAuthEvent struct {
	Event   string `json:"event"`
	Payload struct {
		UserID      string `json:"user_id"`
		AccessToken string `json:"access_token"`
		ExpiresAt   string `json:"expires_at"`
	} `json:"payload"`
}

// realtimeHub fans provider auth events out to subscribers. Events come from
// two places: the backend's websocket and local announcements made by the
// Client after its own auth calls, mirroring what the backend would push.
type realtimeHub struct {
	wsURL    string
	anonKey  string
	deviceID string
	cfg      RealtimeConfig
	logger   *zap.SugaredLogger

	mu          sync.Mutex
	subscribers map[int]chan ports.AuthEvent
	nextID      int
	started     bool
	closed      bool
	cancel      context.CancelFunc
}

func newRealtimeHub(baseURL, anonKey string, cfg RealtimeConfig, logger *zap.SugaredLogger) *realtimeHub {
	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/realtime/v1/websocket"
	return &realtimeHub{
		wsURL:       wsURL,
		anonKey:     anonKey,
		deviceID:    utils.GenerateDeviceID(),
		cfg:         cfg,
		logger:      logger,
		subscribers: make(map[int]chan ports.AuthEvent),
	}
}

// subscribe registers a listener. The websocket reader is started lazily on
// the first subscription. The returned func unsubscribes and closes the
// channel; the channel is also closed when ctx ends.
func (h *realtimeHub) subscribe(ctx context.Context) (<-chan ports.AuthEvent, func(), error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		ch := make(chan ports.AuthEvent)
		close(ch)
		return ch, func() {}, nil
	}

	ch := make(chan ports.AuthEvent, 16)
	id := h.nextID
	h.nextID++
	h.subscribers[id] = ch

	if !h.started && h.cfg.Enabled {
		h.started = true
		runCtx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		go h.run(runCtx)
	}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			if sub, ok := h.subscribers[id]; ok {
				delete(h.subscribers, id)
				close(sub)
			}
			h.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return ch, unsubscribe, nil
}

// announce delivers a locally generated auth event to all subscribers.
func (h *realtimeHub) announce(event ports.AuthEvent) {
	h.mu.Lock()
	subs := make([]chan ports.AuthEvent, 0, len(h.subscribers))
	for _, ch := range h.subscribers {
		subs = append(subs, ch)
	}
	h.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			h.logger.Debugw("dropping auth event for slow subscriber")
		}
	}
}

// Close tears down the websocket and all subscriber channels.
func (h *realtimeHub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	if h.cancel != nil {
		h.cancel()
	}
	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
	h.mu.Unlock()
}

// run keeps one websocket connection alive, reconnecting with capped
// exponential backoff.
func (h *realtimeHub) run(ctx context.Context) {
	delay := h.cfg.ReconnectMin
	for {
		if ctx.Err() != nil {
			return
		}

		if err := h.readLoop(ctx); err != nil && ctx.Err() == nil {
			h.logger.Warnw("realtime connection lost", "error", err, "retry_in", delay)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		delay *= 2
		if delay > h.cfg.ReconnectMax {
			delay = h.cfg.ReconnectMax
		}
	}
}

func (h *realtimeHub) readLoop(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, h.wsURL+"?apikey="+h.anonKey, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	h.logger.Infow("realtime auth channel connected", "device_id", h.deviceID)

	// Ping keeps intermediaries from dropping the idle connection.
	pingDone := make(chan struct{})
	defer close(pingDone)
	go func() {
		ticker := time.NewTicker(h.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingDone:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var frame wireAuthEvent
		if err := json.Unmarshal(data, &frame); err != nil {
			h.logger.Debugw("ignoring malformed realtime frame", "error", err)
			continue
		}
		if event, ok := h.translate(frame); ok {
			h.announce(event)
		}
	}
}

func (h *realtimeHub) translate(frame wireAuthEvent) (ports.AuthEvent, bool) {
	switch frame.Event {
	case "SIGNED_IN", "TOKEN_REFRESHED":
		sess := &ports.ProviderSession{
			UserID:      domain.UserID(frame.Payload.UserID),
			AccessToken: frame.Payload.AccessToken,
		}
		// Frames without an expiry leave the zero value in place.
		if t, err := utils.ParseTimestampPtr(frame.Payload.ExpiresAt); err == nil && t != nil {
			sess.ExpiresAt = *t
		}
		kind := ports.AuthEventSignedIn
		if frame.Event == "TOKEN_REFRESHED" {
			kind = ports.AuthEventTokenRefreshed
		}
		return ports.AuthEvent{Kind: kind, Session: sess}, true
	case "SIGNED_OUT":
		return ports.AuthEvent{Kind: ports.AuthEventSignedOut}, true
	default:
		return ports.AuthEvent{}, false
	}
}
