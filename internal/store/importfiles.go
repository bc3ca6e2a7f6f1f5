package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendtrack/vendtrack-api/internal/models"
)

// ImportFiles records archival metadata. A row exists only for uploads the
// archive sink actually stored.
type ImportFiles struct {
	pool *pgxpool.Pool
}

func NewImportFiles(pool *pgxpool.Pool) *ImportFiles {
	return &ImportFiles{pool: pool}
}

func (s *ImportFiles) Create(ctx context.Context, file models.ImportFile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO import_files (batch_id, original_name, storage_key, size)
		VALUES ($1, $2, $3, $4)
	`, file.BatchID, file.OriginalName, file.StorageKey, file.Size)
	if err != nil {
		return fmt.Errorf("creating import file: %w", err)
	}

	return nil
}

func (s *ImportFiles) List(ctx context.Context) ([]models.ImportFile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, batch_id, original_name, storage_key, size, created_at
		FROM import_files
		ORDER BY created_at DESC
		LIMIT 200
	`)
	if err != nil {
		return nil, fmt.Errorf("listing import files: %w", err)
	}
	defer rows.Close()

	var files []models.ImportFile

	for rows.Next() {
		var f models.ImportFile
		if err := rows.Scan(&f.ID, &f.BatchID, &f.OriginalName, &f.StorageKey, &f.Size, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning import file: %w", err)
		}

		files = append(files, f)
	}

	return files, rows.Err()
}
