package backend

import (
	"context"

	"ledger/internal/ports"
	"ledger/internal/services"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the store, the optional event publisher and a
// cleanup function closing both.
type BackendResult struct {
	Store ports.Store
	// Publisher is nil when no broker is configured.
	Publisher services.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}
