package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coyotecrew/camporee-collator/models"
)

var ErrEntityNotFound = errors.New("entity not found")

type EntityRepository interface {
	Create(ctx context.Context, entity *models.Entity) error
	GetByID(ctx context.Context, id string) (*models.Entity, error)
	List(ctx context.Context) ([]models.Entity, error)
	CountsByType(ctx context.Context) (map[models.EntityType]int, error)
	DeleteAll(ctx context.Context) error
}

type sqlEntityRepository struct {
	db *sql.DB
}

func NewSQLEntityRepository(db *sql.DB) EntityRepository {
	return &sqlEntityRepository{db: db}
}

func (r *sqlEntityRepository) Create(ctx context.Context, e *models.Entity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entities (id, type, troop_number, name, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Type, e.TroopNumber, e.Name, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}
	return nil
}

func (r *sqlEntityRepository) GetByID(ctx context.Context, id string) (*models.Entity, error) {
	var e models.Entity
	err := r.db.QueryRowContext(ctx, `
		SELECT id, type, troop_number, name, created_at
		FROM entities WHERE id = $1`, id).
		Scan(&e.ID, &e.Type, &e.TroopNumber, &e.Name, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity %s: %w", id, err)
	}
	return &e, nil
}

func (r *sqlEntityRepository) List(ctx context.Context) ([]models.Entity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, troop_number, name, created_at
		FROM entities ORDER BY troop_number, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var out []models.Entity
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(&e.ID, &e.Type, &e.TroopNumber, &e.Name, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entity row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *sqlEntityRepository) CountsByType(ctx context.Context) (map[models.EntityType]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM entities GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count entities: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.EntityType]int)
	for rows.Next() {
		var t models.EntityType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("failed to scan entity count: %w", err)
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

func (r *sqlEntityRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return fmt.Errorf("failed to delete entities: %w", err)
	}
	return nil
}
