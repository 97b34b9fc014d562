package viewers

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrProductIDRequired = fmt.Errorf("%w: productId is required", ErrInvalidInput)
	ErrSessionIDRequired = fmt.Errorf("%w: sessionId is required", ErrInvalidInput)

	ErrSessionNotFound = errors.New("session not found")

	// the session ended (left, swept, or silent past the active window) and cannot be resumed
	ErrSessionExpired = errors.New("session expired")

	ErrStoreUnavailable = errors.New("session store unavailable")
)

// wraps a store failure, keeping ErrSessionNotFound as is
func storeErr(op string, err error) error {
	if errors.Is(err, ErrSessionNotFound) {
		return err
	}

	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
