package cron

import "time"

type CleanupResponse struct {
	Success                bool      `json:"success"`
	InactiveSessionsMarked int       `json:"inactiveSessionsMarked"`
	OldSessionsDeleted     int       `json:"oldSessionsDeleted"`
	Timestamp              time.Time `json:"timestamp"`
}

type CleanupErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
