package errors

// represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "not_found", "validation_error")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (sanitized in production)
}

// result of classifying an error for logging and response sanitization
type ErrorInfo struct {
	Category  string
	Sanitized string
}
