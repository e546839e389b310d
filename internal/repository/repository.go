package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/pinmap/internal/models"
)

type Repository struct {
	db  Database
	log *slog.Logger
}

type Interface interface {
	FetchEntities(ctx context.Context, limit int) ([]models.Entity, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
