package db

import (
	"context"
	"database/sql"
	"fmt"

	"weld-inspection-db/internal/model"
	"weld-inspection-db/pkg/errors"
)

type PhotoRepository interface {
	InsertPhoto(ctx context.Context, photo *model.WeldPhoto) error
	GetPhoto(ctx context.Context, id int64) (*model.WeldPhoto, error)
	ListPhotos(ctx context.Context, weldID int64) ([]model.WeldPhoto, error)
	DeletePhoto(ctx context.Context, id int64) error
}

type photoRepository struct {
	db *sql.DB
}

func NewPhotoRepository(db *sql.DB) PhotoRepository {
	return &photoRepository{db: db}
}

func (r *photoRepository) InsertPhoto(ctx context.Context, photo *model.WeldPhoto) error {
	query := `INSERT INTO weld_photos (weld_id, photo, report_number, caption, uploaded_at) VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, photo.WeldID, photo.Photo, photo.ReportNumber, photo.Caption, photo.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert photo for weld %d: %w", photo.WeldID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert photo for weld %d: %w", photo.WeldID, err)
	}
	photo.ID = id
	return nil
}

func (r *photoRepository) GetPhoto(ctx context.Context, id int64) (*model.WeldPhoto, error) {
	query := `SELECT id, weld_id, photo, report_number, caption, uploaded_at FROM weld_photos WHERE id = ?`

	var p model.WeldPhoto
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.WeldID, &p.Photo, &p.ReportNumber, &p.Caption, &p.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get photo %d: %w", id, err)
	}
	return &p, nil
}

func (r *photoRepository) ListPhotos(ctx context.Context, weldID int64) ([]model.WeldPhoto, error) {
	query := `SELECT id, weld_id, photo, report_number, caption, uploaded_at
			  FROM weld_photos WHERE weld_id = ? ORDER BY uploaded_at, id`

	rows, err := r.db.QueryContext(ctx, query, weldID)
	if err != nil {
		return nil, fmt.Errorf("list photos for weld %d: %w", weldID, err)
	}
	defer rows.Close()

	photos := []model.WeldPhoto{}
	for rows.Next() {
		var p model.WeldPhoto
		if err := rows.Scan(&p.ID, &p.WeldID, &p.Photo, &p.ReportNumber, &p.Caption, &p.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list photos for weld %d: %w", weldID, err)
	}

	return photos, nil
}

func (r *photoRepository) DeletePhoto(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM weld_photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete photo %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete photo %d: %w", id, err)
	}
	if n == 0 {
		return errors.ErrRecordNotFound
	}
	return nil
}
