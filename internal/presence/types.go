package presence

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// the server no longer accepts the session (ended, expired or deleted)
	ErrSessionGone = errors.New("viewer session gone")

	ErrAlreadyMounted = errors.New("widget already mounted")
)

// the viewer operations a widget calls
type API interface {
	Join(ctx context.Context, productID string) (string, error)
	Heartbeat(ctx context.Context, sessionID string) error
	Leave(ctx context.Context, sessionID string) error
	Count(ctx context.Context, productID string) (int, error)
}

// non-2xx answer from the viewers API
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("viewers api: status %d", e.Status)
	}

	return fmt.Sprintf("viewers api: %s: %s", e.Code, e.Message)
}

// 404 and 410 both mean the session cannot be resumed
func (e *APIError) Is(target error) bool {
	return target == ErrSessionGone &&
		(e.Status == http.StatusNotFound || e.Status == http.StatusGone)
}

type WidgetOptions struct {
	HeartbeatInterval time.Duration
	PollInterval      time.Duration

	// per call; a slow server never stalls the loops past this
	RequestTimeout time.Duration
}

func DefaultWidgetOptions() WidgetOptions {
	return WidgetOptions{
		HeartbeatInterval: 30 * time.Second,
		PollInterval:      15 * time.Second,
		RequestTimeout:    10 * time.Second,
	}
}

// what the widget would render
type Snapshot struct {
	ProductID string
	SessionID string
	Count     int
	Online    bool
	Err       error
	UpdatedAt time.Time
}

type joinRequest struct {
	ProductID string `json:"productId"`
}

type joinResponse struct {
	SessionID string `json:"sessionId"`
}

type heartbeatRequest struct {
	SessionID string `json:"sessionId"`
}

type countResponse struct {
	ViewerCount int `json:"viewerCount"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
