// Package persist stores serialized game-session snapshots and the streak
// record in a local SQLite database, one row per profile per day. Every
// load runs through session.Restore so reconciliation repairs whatever
// intermediate state the last checkpoint captured.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/factday/fivefacts/internal/session"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	profile_id TEXT NOT NULL,
	day TEXT NOT NULL,
	state TEXT NOT NULL,
	saved_at TEXT NOT NULL,
	PRIMARY KEY (profile_id, day)
);
CREATE TABLE IF NOT EXISTS streaks (
	profile_id TEXT PRIMARY KEY,
	current_streak INTEGER NOT NULL DEFAULT 0,
	weekly TEXT NOT NULL DEFAULT '[]',
	week_start TEXT NOT NULL DEFAULT '',
	last_completion_day TEXT NOT NULL DEFAULT ''
);`

// Gateway checkpoints session snapshots and hands them back on load.
type Gateway struct {
	db  *sql.DB
	log *slog.Logger
}

func NewGateway(ctx context.Context, db *sql.DB, logger *slog.Logger) (*Gateway, error) {
	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		return nil, fmt.Errorf("creating snapshot schema: %w", err)
	}
	return &Gateway{db: db, log: logger}, nil
}

// Save upserts the snapshot for its day. Wired as the machine's checkpoint
// hook, so it runs after every session mutation.
func (g *Gateway) Save(ctx context.Context, profileID string, snap session.Snapshot) error {
	state, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO snapshots (profile_id, day, state, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (profile_id, day) DO UPDATE SET state = excluded.state, saved_at = excluded.saved_at
	`, profileID, snap.Day, string(state), snap.SavedAt.Format(time.RFC3339Nano))
	return err
}

// Checkpoint adapts Save into the machine hook shape. Errors are logged,
// not surfaced: a failed checkpoint must never interrupt play.
func (g *Gateway) Checkpoint(profileID string) func(session.Snapshot) {
	return func(snap session.Snapshot) {
		if err := g.Save(context.Background(), profileID, snap); err != nil {
			g.log.Error("checkpoint failed", "profile", profileID, "error", err)
		}
	}
}

// Load returns today's snapshot for the profile, discarding rows from past
// days first. ok=false means there is nothing to restore.
func (g *Gateway) Load(ctx context.Context, profileID, day string) (session.Snapshot, bool, error) {
	if _, err := g.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE profile_id = ? AND day <> ?
	`, profileID, day); err != nil {
		return session.Snapshot{}, false, err
	}

	var state string
	err := g.db.QueryRowContext(ctx, `
		SELECT state FROM snapshots WHERE profile_id = ? AND day = ?
	`, profileID, day).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Snapshot{}, false, nil
	}
	if err != nil {
		return session.Snapshot{}, false, err
	}

	var snap session.Snapshot
	if err := json.Unmarshal([]byte(state), &snap); err != nil {
		// Unreadable state is treated like corruption: start fresh.
		g.log.Error("snapshot undecodable, discarding", "profile", profileID, "error", err)
		return session.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Restore loads and reconciles today's session, or starts a fresh one. A
// corrupted snapshot is logged and replaced with the safe minimal state.
func (g *Gateway) Restore(ctx context.Context, profileID, day string, cfg session.Config) (*session.Machine, error) {
	snap, ok, err := g.Load(ctx, profileID, day)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if !ok {
		return session.New(cfg), nil
	}

	m, err := session.Restore(cfg, snap)
	if errors.Is(err, session.ErrCorruptedState) {
		g.log.Error("snapshot failed reconciliation, resetting session",
			"profile", profileID, "day", day)
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
