package viewers

import "time"

type JoinRequest struct {
	ProductID string `json:"productId" example:"prod_8f2k1"`
}

type HeartbeatRequest struct {
	SessionID string `json:"sessionId" example:"3f0c1d1e-8a44-4a3e-9b8e-0f6f5b6a7c21"`
}

// CountResponse is the live viewer count of one product
type CountResponse struct {
	ProductID   string    `json:"productId"`
	ViewerCount int       `json:"viewerCount"`
	Timestamp   time.Time `json:"timestamp"`
}

type JoinResponse struct {
	SessionID string    `json:"sessionId"`
	ProductID string    `json:"productId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionResponse acknowledges a heartbeat or leave
type SessionResponse struct {
	SessionID string    `json:"sessionId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type StatsResponse struct {
	ActiveSessions  int       `json:"activeSessions"`
	PendingInactive int       `json:"pendingInactive"`
	TotalSessions   int       `json:"totalSessions"`
	Timestamp       time.Time `json:"timestamp"`
}

type CleanupResponse struct {
	Success                bool      `json:"success"`
	TriggeredBy            string    `json:"triggeredBy,omitempty"`
	InactiveSessionsMarked int       `json:"inactiveSessionsMarked"`
	OldSessionsDeleted     int       `json:"oldSessionsDeleted"`
	ActiveSessions         int       `json:"activeSessions"`
	PendingInactive        int       `json:"pendingInactive"`
	Timestamp              time.Time `json:"timestamp"`
}

// CleanupErrorResponse is returned when a sweep could not fetch its work
type CleanupErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
