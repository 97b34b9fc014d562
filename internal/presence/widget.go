package presence

import (
	"context"
	"errors"
	"sync"
	"time"

	"codeberg.org/storefront/server/internal/logger"
)

// keeps one viewer session alive for a product and polls its live count.
// both loops belong to the widget: Mount starts them, Unmount stops them.
type Widget struct {
	api       API
	productID string
	opts      WidgetOptions

	mu       sync.Mutex
	snapshot Snapshot
	current  *mount

	updates chan Snapshot
}

// state owned by one Mount call; a later Mount never shares it
type mount struct {
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	sessionID string
}

func NewWidget(api API, productID string, opts WidgetOptions) *Widget {
	defaults := DefaultWidgetOptions()

	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = defaults.HeartbeatInterval
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = defaults.PollInterval
	}

	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaults.RequestTimeout
	}

	return &Widget{
		api:       api,
		productID: productID,
		opts:      opts,
		snapshot:  Snapshot{ProductID: productID},
		updates:   make(chan Snapshot, 1),
	}
}

// delivers snapshots; a slow reader only ever sees the latest one
func (w *Widget) Updates() <-chan Snapshot {
	return w.updates
}

func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.snapshot
}

// joins, publishes a first count and starts the heartbeat and poll loops.
// a failed join is returned but leaves the widget mounted; the heartbeat loop retries it.
func (w *Widget) Mount(ctx context.Context) error {
	w.mu.Lock()
	if w.current != nil {
		w.mu.Unlock()
		return ErrAlreadyMounted
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m := &mount{cancel: cancel}
	m.wg.Add(2)
	w.current = m
	w.mu.Unlock()

	joinErr := w.join(ctx, m)
	w.poll(ctx)

	go w.run(loopCtx, m, w.opts.HeartbeatInterval, func(ctx context.Context) { w.heartbeat(ctx, m) })
	go w.run(loopCtx, m, w.opts.PollInterval, w.poll)

	return joinErr
}

// stops both loops, waits for them, then leaves the session
func (w *Widget) Unmount(ctx context.Context) error {
	w.mu.Lock()
	m := w.current
	w.current = nil
	w.mu.Unlock()

	if m == nil {
		return nil
	}

	m.cancel()
	m.wg.Wait()

	w.mu.Lock()
	sessionID := m.sessionID
	m.sessionID = ""
	if w.current == nil {
		w.snapshot.SessionID = ""
	}
	w.mu.Unlock()

	if sessionID == "" {
		return nil
	}

	return w.leave(ctx, sessionID)
}

func (w *Widget) leave(ctx context.Context, sessionID string) error {
	ctx, done := context.WithTimeout(ctx, w.opts.RequestTimeout)
	defer done()

	if err := w.api.Leave(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionGone) {
		return err
	}

	return nil
}

func (w *Widget) run(ctx context.Context, m *mount, interval time.Duration, tick func(context.Context)) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// a session joined after its mount was unmounted is left straight away
func (w *Widget) join(ctx context.Context, m *mount) error {
	joinCtx, cancel := context.WithTimeout(ctx, w.opts.RequestTimeout)
	defer cancel()

	sessionID, err := w.api.Join(joinCtx, w.productID)
	if err != nil {
		logger.FromContext(ctx).Debug("viewer join failed", "product_id", w.productID, "error", err)

		w.update(func(s *Snapshot) { s.Err = err })
		return err
	}

	w.mu.Lock()
	mounted := w.current == m
	if mounted {
		m.sessionID = sessionID
		w.apply(func(s *Snapshot) { s.SessionID = sessionID })
	}
	w.mu.Unlock()

	if !mounted {
		if err := w.leave(context.WithoutCancel(ctx), sessionID); err != nil {
			logger.FromContext(ctx).Debug("leaving orphaned viewer session failed", "session_id", sessionID, "error", err)
		}
	}

	return nil
}

// a session the server no longer accepts is replaced with a fresh join
func (w *Widget) heartbeat(ctx context.Context, m *mount) {
	w.mu.Lock()
	sessionID := m.sessionID
	w.mu.Unlock()

	if sessionID == "" {
		w.join(ctx, m) //nolint:errcheck,gosec // recorded in the snapshot
		return
	}

	hbCtx, cancel := context.WithTimeout(ctx, w.opts.RequestTimeout)
	err := w.api.Heartbeat(hbCtx, sessionID)
	cancel()

	switch {
	case err == nil:
	case errors.Is(err, ErrSessionGone):
		logger.FromContext(ctx).Debug("viewer session gone, joining again", "session_id", sessionID)

		w.mu.Lock()
		m.sessionID = ""
		w.apply(func(s *Snapshot) { s.SessionID = "" })
		w.mu.Unlock()

		w.join(ctx, m) //nolint:errcheck,gosec // recorded in the snapshot
	default:
		logger.FromContext(ctx).Debug("viewer heartbeat failed", "session_id", sessionID, "error", err)
	}
}

// count failures degrade the snapshot to offline and keep the last known count
func (w *Widget) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.opts.RequestTimeout)
	defer cancel()

	count, err := w.api.Count(ctx, w.productID)

	w.update(func(s *Snapshot) {
		s.Err = err
		s.Online = err == nil

		if err == nil {
			s.Count = count
		}
	})
}

func (w *Widget) update(fn func(*Snapshot)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.apply(fn)
}

// applies fn and publishes the result, replacing any unread snapshot.
// caller holds mu
func (w *Widget) apply(fn func(*Snapshot)) {
	fn(&w.snapshot)
	w.snapshot.UpdatedAt = time.Now()

	for {
		select {
		case w.updates <- w.snapshot:
			return
		default:
		}

		select {
		case <-w.updates:
		default:
		}
	}
}
