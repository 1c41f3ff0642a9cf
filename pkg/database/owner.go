package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OwnerScope wraps a connection bound to the acting user and ensures
// cleanup. The connection has app.current_user_id set for RLS policy
// evaluation; repositories additionally filter by user_id explicitly, so
// RLS is defense in depth, not the primary ownership check.
type OwnerScope struct {
	Conn *pgxpool.Conn
}

// Close resets the owner context and releases the connection to the pool.
// This MUST be called to prevent the user context from leaking to the next
// request.
func (s *OwnerScope) Close() {
	if s.Conn == nil {
		return
	}
	_, _ = s.Conn.Exec(context.Background(), "RESET app.current_user_id")
	s.Conn.Release()
}

// WithOwner acquires a connection and sets the owner context for RLS.
// The returned OwnerScope MUST be closed with defer scope.Close().
func (db *DB) WithOwner(ctx context.Context, userID uuid.UUID) (*OwnerScope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	_, err = conn.Exec(ctx, "SELECT set_config('app.current_user_id', $1, false)", userID.String())
	if err != nil {
		conn.Release()
		return nil, err
	}

	return &OwnerScope{Conn: conn}, nil
}

// WithoutOwner acquires a connection without an owner context.
// Use this for maintenance operations that need full access (e.g. test
// fixtures). The returned OwnerScope MUST be closed with defer scope.Close().
func (db *DB) WithoutOwner(ctx context.Context) (*OwnerScope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &OwnerScope{Conn: conn}, nil
}
