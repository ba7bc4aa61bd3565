// Package cache provides process-wide snapshot caches kept fresh through
// PostgreSQL LISTEN/NOTIFY.
package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ptv/pkg/logger"
)

// Notification channels.
const (
	ChannelTypes         = "types_changed"
	ChannelOrganizations = "organizations_changed"
	ChannelFinto         = "finto_changed"
)

// Handler is called for every notification on a channel. An empty payload
// asks for a full reload.
type Handler func(ctx context.Context, payload string)

// Listener holds one dedicated connection in LISTEN mode and dispatches
// notifications to the registered handlers. After a reconnect every handler
// is called with an empty payload, since notifications may have been missed.
type Listener struct {
	pool     *pgxpool.Pool
	handlers map[string][]Handler

	// Lifecycle
	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewListener creates a listener on pool.
func NewListener(pool *pgxpool.Pool) *Listener {
	return &Listener{
		pool:     pool,
		handlers: make(map[string][]Handler),
	}
}

// On registers h for channel. Handlers must be registered before Start.
func (l *Listener) On(channel string, h Handler) {
	l.handlers[channel] = append(l.handlers[channel], h)
}

// Start begins listening in the background.
func (l *Listener) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()
	if l.started {
		return nil
	}
	if len(l.handlers) == 0 {
		return fmt.Errorf("cache listener: no channels registered")
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.started = true

	l.wg.Add(1)
	go l.listenLoop()
	logger.Info(l.ctx, "cache listener started", "channels", l.channels())
	return nil
}

// Stop gracefully stops the listener.
func (l *Listener) Stop() {
	l.lifecycleMu.Lock()
	if !l.started {
		l.lifecycleMu.Unlock()
		return
	}
	cancel := l.cancel
	l.started = false
	l.cancel = nil
	l.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.wg.Wait()
	logger.Info(context.Background(), "cache listener stopped")
}

func (l *Listener) channels() []string {
	out := make([]string, 0, len(l.handlers))
	for ch := range l.handlers {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

func (l *Listener) listenLoop() {
	defer l.wg.Done()

	connected := false
	for {
		select {
		case <-l.ctx.Done():
			return
		default:
		}

		// Acquire dedicated connection for LISTEN
		conn, err := l.pool.Acquire(l.ctx)
		if err != nil {
			logger.Error(l.ctx, "failed to acquire connection for LISTEN", "error", err)
			l.sleep(time.Second)
			continue
		}

		if err := l.subscribe(conn); err != nil {
			logger.Error(l.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			l.sleep(time.Second)
			continue
		}
		if connected {
			for ch := range l.handlers {
				l.dispatch(ch, "")
			}
		}
		connected = true

		l.waitForNotifications(conn)
		conn.Release()
	}
}

func (l *Listener) subscribe(conn *pgxpool.Conn) error {
	for _, ch := range l.channels() {
		if _, err := conn.Exec(l.ctx, "LISTEN "+pgx.Identifier{ch}.Sanitize()); err != nil {
			return fmt.Errorf("listen %s: %w", ch, err)
		}
	}
	return nil
}

// waitForNotifications blocks until the connection breaks or the listener stops.
func (l *Listener) waitForNotifications(conn *pgxpool.Conn) {
	for {
		// Wait for notification with timeout for graceful shutdown
		ctx, cancel := context.WithTimeout(l.ctx, 30*time.Second)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if l.ctx.Err() != nil {
				return
			}
			if ctx.Err() == context.DeadlineExceeded {
				continue
			}
			logger.Warn(l.ctx, "LISTEN connection lost", "error", err)
			return
		}

		logger.Debug(l.ctx, "received notification",
			"channel", notification.Channel,
			"payload", notification.Payload)
		l.dispatch(notification.Channel, notification.Payload)
	}
}

// dispatch runs the handlers of channel sequentially with panic recovery.
func (l *Listener) dispatch(channel, payload string) {
	for _, h := range l.handlers[channel] {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(l.ctx, "cache handler panic recovered", "channel", channel, "panic", r)
				}
			}()
			h(l.ctx, payload)
		}()
	}
}

func (l *Listener) sleep(d time.Duration) {
	select {
	case <-l.ctx.Done():
	case <-time.After(d):
	}
}
