package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"weld-inspection-db/internal/model"
	"weld-inspection-db/pkg/errors"
)

type FileRepository interface {
	CreateFile(ctx context.Context, file *model.ImportFile) error
	GetFile(ctx context.Context, fileID int64) (*model.ImportFile, error)
	UpdateFileStatus(ctx context.Context, fileID int64, status model.FileStatus, counts model.ImportCounts, errorMessage *string) error
}

type fileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) CreateFile(ctx context.Context, file *model.ImportFile) error {
	now := time.Now().UTC()
	query := `INSERT INTO import_files (storage_path, file_name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, file.StoragePath, file.FileName, file.Status, now, now)
	if err != nil {
		return fmt.Errorf("create import file: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create import file: %w", err)
	}
	file.ID = id
	file.CreatedAt = now
	file.UpdatedAt = now
	return nil
}

func (r *fileRepository) GetFile(ctx context.Context, fileID int64) (*model.ImportFile, error) {
	query := `SELECT id, storage_path, file_name, status, created_count, updated_count, skipped_count,
			  error_message, created_at, updated_at FROM import_files WHERE id = ?`

	var (
		file   model.ImportFile
		errMsg sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, fileID).Scan(
		&file.ID, &file.StoragePath, &file.FileName, &file.Status,
		&file.CreatedCount, &file.UpdatedCount, &file.SkippedCount,
		&errMsg, &file.CreatedAt, &file.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import file %d: %w", fileID, err)
	}
	if errMsg.Valid {
		file.ErrorMessage = &errMsg.String
	}

	return &file, nil
}

func (r *fileRepository) UpdateFileStatus(ctx context.Context, fileID int64, status model.FileStatus, counts model.ImportCounts, errorMessage *string) error {
	query := `UPDATE import_files SET status = ?, created_count = ?, updated_count = ?, skipped_count = ?,
			  error_message = ?, updated_at = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, status, counts.Created, counts.Updated, counts.Skipped,
		errorMessage, time.Now().UTC(), fileID)
	if err != nil {
		return fmt.Errorf("update import file %d: %w", fileID, err)
	}
	return nil
}
