package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
)

// MetadataRepository stores when the dividend history was last refreshed.
type MetadataRepository struct {
	db *sql.DB
}

// NewMetadataRepository creates a new MetadataRepository.
func NewMetadataRepository(db *sql.DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

// Get returns the refresh metadata. Before the first refresh it returns the zero value.
func (r *MetadataRepository) Get(ctx context.Context) (model.RefreshMetadata, error) {
	var lastUpdated string
	var meta model.RefreshMetadata

	err := r.db.QueryRowContext(ctx, `SELECT last_updated, source FROM refresh_metadata WHERE id = 1`).
		Scan(&lastUpdated, &meta.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RefreshMetadata{}, nil
	}
	if err != nil {
		return model.RefreshMetadata{}, fmt.Errorf("failed to query refresh_metadata table: %w", err)
	}

	meta.LastUpdated, err = ParseTime(lastUpdated)
	if err != nil {
		return model.RefreshMetadata{}, err
	}
	return meta, nil
}

// Set stores the refresh metadata.
func (r *MetadataRepository) Set(ctx context.Context, meta model.RefreshMetadata) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_metadata (id, last_updated, source) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_updated = excluded.last_updated, source = excluded.source
	`, formatTime(meta.LastUpdated), meta.Source)
	if err != nil {
		return fmt.Errorf("failed to update refresh_metadata table: %w", err)
	}
	return nil
}
