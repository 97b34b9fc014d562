package viewers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// owns the join/heartbeat/leave lifecycle and the live count
type Manager struct {
	store        Store
	activeWindow time.Duration
	now          func() time.Time
}

func NewManager(store Store, activeWindow time.Duration) *Manager {
	return &Manager{
		store:        store,
		activeWindow: activeWindow,
		now:          time.Now,
	}
}

// replaces the wall clock, used by tests
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) ActiveWindow() time.Duration {
	return m.activeWindow
}

// stores keep millisecond precision at best
func (m *Manager) clock() time.Time {
	return m.now().UTC().Truncate(time.Millisecond)
}

// creates a new active session for the product
func (m *Manager) Join(ctx context.Context, productID string, info ClientInfo) (*ViewerSession, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrProductIDRequired
	}

	now := m.clock()
	state := OnJoin(now)

	session := &ViewerSession{
		SessionID: uuid.NewString(),
		ProductID: productID,
		UserAgent: info.UserAgent,
		IPAddress: info.IPAddress,
		JoinedAt:  now,
	}
	state.applyTo(session)

	if err := m.store.Create(ctx, session); err != nil {
		return nil, storeErr("create session", err)
	}

	return session, nil
}

// refreshes lastSeen for a live session
func (m *Manager) Heartbeat(ctx context.Context, sessionID string) (*ViewerSession, error) {
	session, err := m.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next, err := OnHeartbeat(StateOf(session), m.clock(), m.activeWindow)
	if err != nil {
		return nil, err
	}

	return m.commit(ctx, session, next)
}

// ends the session without deleting it
func (m *Manager) Leave(ctx context.Context, sessionID string) (*ViewerSession, error) {
	session, err := m.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return m.commit(ctx, session, OnLeave(StateOf(session), m.clock()))
}

// returns the number of live viewers of the product
func (m *Manager) Count(ctx context.Context, productID string) (int, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return 0, ErrProductIDRequired
	}

	count, err := m.store.CountActive(ctx, productID, m.clock().Add(-m.activeWindow))
	if err != nil {
		return 0, storeErr("count active sessions", err)
	}

	return count, nil
}

// returns store-wide counts relative to the active window
func (m *Manager) Stats(ctx context.Context) (*Stats, error) {
	stats, err := m.store.Stats(ctx, m.clock().Add(-m.activeWindow))
	if err != nil {
		return nil, storeErr("session stats", err)
	}

	return stats, nil
}

func (m *Manager) lookup(ctx context.Context, sessionID string) (*ViewerSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}

	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, storeErr("get session", err)
	}

	return session, nil
}

func (m *Manager) commit(ctx context.Context, session *ViewerSession, next State) (*ViewerSession, error) {
	if err := m.store.Patch(ctx, session.SessionID, next.Patch()); err != nil {
		// deleted by the janitor between the read and the write
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}

		return nil, storeErr("patch session", err)
	}

	updated := session.clone()
	next.applyTo(updated)

	return updated, nil
}
