package driven

import "context"

// Pacer spaces consecutive calls to an external service.
type Pacer interface {
	// Wait blocks until the next call may be made.
	Wait(ctx context.Context) error
}
