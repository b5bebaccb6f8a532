package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rqlite/gorqlite"
)

func New(conn *gorqlite.Connection) *Queries {
	return &Queries{
		conn: conn,
	}
}

type Queries struct {
	conn *gorqlite.Connection
}

func (q *Queries) Close() {
	q.conn.Close()
}

// Profile is the most recent summary stored for a user.
type Profile struct {
	User          string
	Summary       string
	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

// ProfilePut inserts or replaces the user's summary. The creation time of an
// existing profile is kept.
func (q *Queries) ProfilePut(ctx context.Context, p Profile) (stored Profile, err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query: `insert into profile (user_name, summary, created_at, last_updated_at)
values (?, ?, ?, ?)
on conflict(user_name) do update
set
    summary = excluded.summary,
    last_updated_at = excluded.last_updated_at
`,
		Arguments: []any{p.User, p.Summary, p.CreatedAt, p.LastUpdatedAt},
	}
	if _, err = q.conn.WriteOneParameterizedContext(ctx, stmt); err != nil {
		return stored, fmt.Errorf("db: profile upsert failed: %w", err)
	}
	stored, ok, err := q.ProfileGet(ctx, p.User)
	if err != nil {
		return stored, err
	}
	if !ok {
		return stored, fmt.Errorf("db: profile %q not found after upsert", p.User)
	}
	return stored, nil
}

func (q *Queries) ProfileGet(ctx context.Context, user string) (p Profile, ok bool, err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query:     `select user_name, summary, created_at, last_updated_at from profile where user_name = ?`,
		Arguments: []any{user},
	}
	result, err := q.conn.QueryOneParameterizedContext(ctx, stmt)
	if err != nil {
		return Profile{}, false, fmt.Errorf("db: profile get failed: %w", err)
	}
	if !result.Next() {
		return Profile{}, false, nil
	}
	if err = result.Scan(&p.User, &p.Summary, &p.CreatedAt, &p.LastUpdatedAt); err != nil {
		return Profile{}, false, err
	}
	return p, true, nil
}

func (q *Queries) ProfileDelete(ctx context.Context, user string) (err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query:     `delete from profile where user_name = ?`,
		Arguments: []any{user},
	}
	if _, err = q.conn.WriteOneParameterizedContext(ctx, stmt); err != nil {
		return fmt.Errorf("db: profile delete failed: %w", err)
	}
	return nil
}
