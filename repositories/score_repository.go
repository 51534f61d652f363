package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coyotecrew/camporee-collator/models"
)

var ErrScoreNotFound = errors.New("score not found")

type ScoreRepository interface {
	// Upsert writes the score keyed by its packet uuid. The bool reports
	// whether a new row was created (false means an overwrite).
	Upsert(ctx context.Context, score *models.Score) (bool, error)
	GetByUUID(ctx context.Context, uuid string) (*models.Score, error)
	ListByGame(ctx context.Context, gameID string) ([]models.Score, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type sqlScoreRepository struct {
	db *sql.DB
}

func NewSQLScoreRepository(db *sql.DB) ScoreRepository {
	return &sqlScoreRepository{db: db}
}

func (r *sqlScoreRepository) Upsert(ctx context.Context, score *models.Score) (bool, error) {
	payload, err := json.Marshal(score.ScorePayload)
	if err != nil {
		return false, fmt.Errorf("failed to encode score payload: %w", err)
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM scores WHERE uuid = $1)`, score.UUID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check score %s: %w", score.UUID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO scores (uuid, game_id, entity_id, score_payload, ts,
			judge_name, judge_email, judge_unit, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (uuid) DO UPDATE SET
			game_id       = excluded.game_id,
			entity_id     = excluded.entity_id,
			score_payload = excluded.score_payload,
			ts            = excluded.ts,
			judge_name    = excluded.judge_name,
			judge_email   = excluded.judge_email,
			judge_unit    = excluded.judge_unit,
			updated_at    = excluded.updated_at`,
		score.UUID, score.GameID, score.EntityID, string(payload), score.Timestamp,
		score.JudgeName, score.JudgeEmail, score.JudgeUnit, score.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert score %s: %w", score.UUID, err)
	}
	return !exists, nil
}

func (r *sqlScoreRepository) GetByUUID(ctx context.Context, uuid string) (*models.Score, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT uuid, game_id, entity_id, score_payload, ts,
			judge_name, judge_email, judge_unit, updated_at
		FROM scores WHERE uuid = $1`, uuid)
	score, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score %s: %w", uuid, err)
	}
	return score, nil
}

func (r *sqlScoreRepository) ListByGame(ctx context.Context, gameID string) ([]models.Score, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT uuid, game_id, entity_id, score_payload, ts,
			judge_name, judge_email, judge_unit, updated_at
		FROM scores WHERE game_id = $1 ORDER BY ts`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []models.Score
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		out = append(out, *score)
	}
	return out, rows.Err()
}

func (r *sqlScoreRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count scores: %w", err)
	}
	return n, nil
}

func (r *sqlScoreRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scores`); err != nil {
		return fmt.Errorf("failed to delete scores: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScore(row rowScanner) (*models.Score, error) {
	var s models.Score
	var payload string
	if err := row.Scan(&s.UUID, &s.GameID, &s.EntityID, &payload, &s.Timestamp,
		&s.JudgeName, &s.JudgeEmail, &s.JudgeUnit, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &s.ScorePayload); err != nil {
		return nil, fmt.Errorf("failed to decode score payload: %w", err)
	}
	return &s, nil
}
