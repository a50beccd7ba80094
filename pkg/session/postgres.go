package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps sessions in the dispatch_sessions table created by
// db.Migrate.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store using pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Load implements Store.
func (p *PostgresStore) Load(ctx context.Context, id string) (*Session, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT data FROM dispatch_sessions WHERE id = $1 AND expires_at > now()`, id,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: load %q: %w", id, err)
	}
	return decode(raw)
}

// Save implements Store.
func (p *PostgresStore) Save(ctx context.Context, s *Session) error {
	if ttlOf(s) <= 0 {
		return p.Delete(ctx, s.ID)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO dispatch_sessions (id, data, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at`,
		s.ID, raw, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("session: save %q: %w", s.ID, err)
	}
	return nil
}

// Delete implements Store.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM dispatch_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("session: delete %q: %w", id, err)
	}
	return nil
}

// DeleteExpired removes expired rows and reports how many were removed.
func (p *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM dispatch_sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("session: delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}
