package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the server tables when missing. The DDL sticks to the
// portable subset that Postgres and SQLite share.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			id           TEXT PRIMARY KEY,
			type         TEXT NOT NULL,
			troop_number TEXT NOT NULL,
			name         TEXT NOT NULL,
			created_at   TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			uuid          TEXT PRIMARY KEY,
			game_id       TEXT NOT NULL,
			entity_id     TEXT NOT NULL,
			score_payload TEXT NOT NULL,
			ts            BIGINT NOT NULL,
			judge_name    TEXT NOT NULL DEFAULT '',
			judge_email   TEXT NOT NULL DEFAULT '',
			judge_unit    TEXT NOT NULL DEFAULT '',
			updated_at    TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_game ON scores (game_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
