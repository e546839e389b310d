package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/pinmap/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the subset of pgxpool.Pool the repository relies on. Narrowing
// the dependency keeps the repository mockable with pgxmock.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NewDatabase creates a pgx connection pool for the given credentials.
func NewDatabase(host, port, user, password, name string) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, name)

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return pool, nil
}

// FetchEntities retrieves the current list of adoptable records to place on
// the map. Location fields may be empty; the pipeline decides what is
// geocodable. Results are ordered by creation date and limited to the
// specified count.
func (r *Repository) FetchEntities(ctx context.Context, limit int) ([]models.Entity, error) {
	var entities []models.Entity
	query := `
		SELECT pet_id, name, COALESCE(city, ''), COALESCE(region, '')
		FROM public.pets
		WHERE is_adopted = false
		ORDER BY created_at DESC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query adoptable records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entity models.Entity
		if errScan := rows.Scan(&entity.ID, &entity.Name, &entity.City, &entity.Region); errScan != nil {
			return nil, fmt.Errorf("failed to scan adoptable record: %w", errScan)
		}
		entities = append(entities, entity)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Fetched entity list", "count", len(entities))

	return entities, nil
}
