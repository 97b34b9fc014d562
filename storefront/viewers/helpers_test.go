package viewers

import (
	"context"
	"sync"
	"time"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// wraps a store, counting calls and injecting failures
type recordingStore struct {
	Store

	mu      sync.Mutex
	calls   map[string]int
	failOp  map[string]error
	failIDs map[string]error
}

func newRecordingStore(inner Store) *recordingStore {
	return &recordingStore{
		Store:   inner,
		calls:   make(map[string]int),
		failOp:  make(map[string]error),
		failIDs: make(map[string]error),
	}
}

func (r *recordingStore) record(op, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls[op]++

	if err := r.failOp[op]; err != nil {
		return err
	}

	if sessionID != "" {
		return r.failIDs[sessionID]
	}

	return nil
}

func (r *recordingStore) failOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failOp[op] = err
}

func (r *recordingStore) failSession(sessionID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failIDs[sessionID] = err
}

func (r *recordingStore) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.calls[op]
}

func (r *recordingStore) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, c := range r.calls {
		n += c
	}

	return n
}

func (r *recordingStore) writes() int {
	return r.count("Create") + r.count("Patch") + r.count("Delete")
}

func (r *recordingStore) Create(ctx context.Context, s *ViewerSession) error {
	if err := r.record("Create", ""); err != nil {
		return err
	}

	return r.Store.Create(ctx, s)
}

func (r *recordingStore) Get(ctx context.Context, id string) (*ViewerSession, error) {
	if err := r.record("Get", ""); err != nil {
		return nil, err
	}

	return r.Store.Get(ctx, id)
}

func (r *recordingStore) Patch(ctx context.Context, id string, p Patch) error {
	if err := r.record("Patch", id); err != nil {
		return err
	}

	return r.Store.Patch(ctx, id, p)
}

func (r *recordingStore) Delete(ctx context.Context, id string) error {
	if err := r.record("Delete", id); err != nil {
		return err
	}

	return r.Store.Delete(ctx, id)
}

func (r *recordingStore) CountActive(ctx context.Context, productID string, since time.Time) (int, error) {
	if err := r.record("CountActive", ""); err != nil {
		return 0, err
	}

	return r.Store.CountActive(ctx, productID, since)
}

func (r *recordingStore) ListStale(ctx context.Context, q StaleQuery) ([]*ViewerSession, error) {
	if err := r.record("ListStale", ""); err != nil {
		return nil, err
	}

	return r.Store.ListStale(ctx, q)
}

func (r *recordingStore) Stats(ctx context.Context, cutoff time.Time) (*Stats, error) {
	if err := r.record("Stats", ""); err != nil {
		return nil, err
	}

	return r.Store.Stats(ctx, cutoff)
}

func seedSession(id, productID string, lastSeen time.Time, active bool) *ViewerSession {
	return &ViewerSession{
		SessionID: id,
		ProductID: productID,
		UserAgent: "test-agent",
		IPAddress: "203.0.113.7",
		JoinedAt:  lastSeen,
		LastSeen:  lastSeen,
		IsActive:  active,
	}
}
