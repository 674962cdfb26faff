package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cumulusid/adaptive/internal/demo/reservations"
	"github.com/cumulusid/adaptive/internal/demo/reservations/sqlite"
	"github.com/cumulusid/adaptive/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "demo.db")
	store, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.ApplyMigrations())
	return store
}

func testReservation(userID string) reservations.Reservation {
	now := time.Now().UTC().Truncate(time.Second)
	return reservations.Reservation{
		ID:        idx.New(),
		UserID:    userID,
		Venue:     "front bar",
		PartySize: 4,
		StartsAt:  now.Add(24 * time.Hour),
		Notes:     "window table",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	want := testReservation("user-1")
	require.NoError(t, store.Create(ctx, want))

	got, err := store.Get(ctx, "user-1", want.ID)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestGetScopedToUser(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	r := testReservation("user-1")
	require.NoError(t, store.Create(ctx, r))

	_, err := store.Get(ctx, "user-2", r.ID)
	require.ErrorIs(t, err, reservations.ErrNotFound)
}

func TestListByUser(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	a := testReservation("user-1")
	b := testReservation("user-1")
	other := testReservation("user-2")
	for _, r := range []reservations.Reservation{a, b, other} {
		require.NoError(t, store.Create(ctx, r))
	}

	got, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// ULIDs sort by creation order
	require.Equal(t, a.ID, got[0].ID)
	require.Equal(t, b.ID, got[1].ID)
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	r := testReservation("user-1")
	require.NoError(t, store.Create(ctx, r))

	r.PartySize = 6
	r.Notes = ""
	r.UpdatedAt = r.UpdatedAt.Add(time.Minute)
	require.NoError(t, store.Update(ctx, r))

	got, err := store.Get(ctx, "user-1", r.ID)
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestUpdateUnknownReservation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	r := testReservation("user-1")
	require.ErrorIs(t, store.Update(context.Background(), r), reservations.ErrNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	r := testReservation("user-1")
	require.NoError(t, store.Create(ctx, r))

	require.NoError(t, store.Delete(ctx, "user-1", r.ID))
	_, err := store.Get(ctx, "user-1", r.ID)
	require.ErrorIs(t, err, reservations.ErrNotFound)

	require.ErrorIs(t, store.Delete(ctx, "user-1", r.ID), reservations.ErrNotFound)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.ApplyMigrations())
	require.NoError(t, store.Ping(context.Background()))
}
