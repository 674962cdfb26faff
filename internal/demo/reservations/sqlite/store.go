// Package sqlite is the SQLite driver for the reservations store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cumulusid/adaptive/internal/demo/reservations"
	"github.com/cumulusid/adaptive/pkg/idx"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Create(ctx context.Context, r reservations.Reservation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reservations (id, user_id, venue, party_size, starts_at, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.UserID, r.Venue, r.PartySize,
		r.StartsAt.UTC().Unix(), r.Notes,
		r.CreatedAt.UTC().Unix(), r.UpdatedAt.UTC().Unix(),
	)
	return err
}

func (s *Store) Get(ctx context.Context, userID string, id idx.ID) (reservations.Reservation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, venue, party_size, starts_at, notes, created_at, updated_at
		FROM reservations
		WHERE id = ? AND user_id = ?`,
		id.String(), userID,
	)
	return scanReservation(row)
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]reservations.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, venue, party_size, starts_at, notes, created_at, updated_at
		FROM reservations
		WHERE user_id = ?
		ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []reservations.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, r reservations.Reservation) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reservations
		SET venue = ?, party_size = ?, starts_at = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		r.Venue, r.PartySize, r.StartsAt.UTC().Unix(), r.Notes, r.UpdatedAt.UTC().Unix(),
		r.ID.String(), r.UserID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (s *Store) Delete(ctx context.Context, userID string, id idx.ID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM reservations WHERE id = ? AND user_id = ?`,
		id.String(), userID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReservation(row scanner) (reservations.Reservation, error) {
	var (
		r                            reservations.Reservation
		id                           string
		startsAt, createdAt, updated int64
	)

	err := row.Scan(&id, &r.UserID, &r.Venue, &r.PartySize, &startsAt, &r.Notes, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return reservations.Reservation{}, reservations.ErrNotFound
	}
	if err != nil {
		return reservations.Reservation{}, err
	}

	r.ID = idx.ID(id)
	r.StartsAt = time.Unix(startsAt, 0).UTC()
	r.CreatedAt = time.Unix(createdAt, 0).UTC()
	r.UpdatedAt = time.Unix(updated, 0).UTC()
	return r, nil
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return reservations.ErrNotFound
	}
	return nil
}
