package viewers

import (
	"context"
	"time"
)

// session store operations; implementations must be safe for concurrent use
type Store interface {
	Create(ctx context.Context, session *ViewerSession) error

	// returns ErrSessionNotFound when no record matches
	Get(ctx context.Context, sessionID string) (*ViewerSession, error)

	// applies the non-nil fields; returns ErrSessionNotFound when no record matches
	Patch(ctx context.Context, sessionID string, patch Patch) error

	// deleting a missing record is not an error
	Delete(ctx context.Context, sessionID string) error

	// counts records for the product with isActive set and lastSeen strictly after since
	CountActive(ctx context.Context, productID string, since time.Time) (int, error)

	// lists records with lastSeen strictly before q.Before, oldest first
	ListStale(ctx context.Context, q StaleQuery) ([]*ViewerSession, error)

	Stats(ctx context.Context, cutoff time.Time) (*Stats, error)
}

// one browser tab viewing one product
type ViewerSession struct {
	SessionID string    `json:"sessionId"`
	ProductID string    `json:"productId"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	JoinedAt  time.Time `json:"joinedAt"`
	LastSeen  time.Time `json:"lastSeen"`
	IsActive  bool      `json:"isActive"`
}

// best-effort metadata captured at join, never used for decisions
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// partial update of the mutable fields
type Patch struct {
	LastSeen *time.Time
	IsActive *bool
}

func (p Patch) IsEmpty() bool {
	return p.LastSeen == nil && p.IsActive == nil
}

type StaleQuery struct {
	Before     time.Time
	ActiveOnly bool
	Limit      int
}

// diagnostic counts relative to a staleness cutoff
type Stats struct {
	ActiveSessions  int `json:"activeSessions"`
	PendingInactive int `json:"pendingInactive"`
	TotalSessions   int `json:"totalSessions"`
}

func (s *ViewerSession) clone() *ViewerSession {
	c := *s
	return &c
}

func ptr[T any](v T) *T {
	return &v
}
