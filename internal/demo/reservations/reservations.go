// Package reservations holds the demo's reservation domain and its storage
// contract. The demo exposes a small CRUD surface over these records so the
// protected-resource middleware has something real to protect.
package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/cumulusid/adaptive/pkg/idx"
)

// ErrNotFound reports a reservation that does not exist or is not visible to
// the requesting user.
var ErrNotFound = errors.New("reservations: not found")

type Reservation struct {
	ID        idx.ID    `json:"id"`
	UserID    string    `json:"userId"`
	Venue     string    `json:"venue"`
	PartySize int       `json:"partySize"`
	StartsAt  time.Time `json:"startsAt"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is the persistence contract for reservations. All lookups are scoped
// to a user so one subject can never read another's records.
type Store interface {
	Create(ctx context.Context, r Reservation) error
	Get(ctx context.Context, userID string, id idx.ID) (Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]Reservation, error)
	Update(ctx context.Context, r Reservation) error
	Delete(ctx context.Context, userID string, id idx.ID) error

	Ping(ctx context.Context) error
	Close() error
}
