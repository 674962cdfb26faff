// Package transaction provides the pluggable store that correlates the steps
// of one authentication attempt across otherwise-stateless HTTP requests.
//
// A transaction is an accumulating bag of state (the latest policy
// assessment, pending factor challenges, the resolved user id) addressed by
// an opaque id. The Adaptive SDK uses the in-memory store in this package by
// default; deployments running more than one proxy instance can substitute
// any implementation of Store (e.g. backed by an external cache) to share
// transaction state between instances.
package transaction

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get, Update and Delete when the transaction id
// is unknown or its entry has expired.
var ErrNotFound = errors.New("transaction: not found")

// Record is the stored state of one transaction. Values must be treated as
// opaque by store implementations; implementations that serialize (e.g. a
// Redis-backed store) can rely on all values placed here by the SDK being
// JSON-marshalable.
type Record map[string]any

// Store is the four-operation transaction storage contract.
//
// Implementations must be safe for concurrent use by multiple goroutines.
// Operations on distinct ids are independent; concurrent writes to the same
// id are last-write-wins and are not serialized by the SDK.
type Store interface {
	// Create stores a new record under a freshly generated id and returns
	// the id. It fails only if the underlying storage rejects the write.
	Create(ctx context.Context, rec Record) (string, error)

	// Get returns the record for the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Update shallow-merges patch into the stored record, overwriting
	// overlapping keys. It fails with ErrNotFound if the id is absent.
	Update(ctx context.Context, id string, patch Record) error

	// Delete removes the record. It fails with ErrNotFound if the id is
	// absent.
	Delete(ctx context.Context, id string) error
}
