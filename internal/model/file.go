package model

import "time"

type FileStatus string

const (
	FileStatusUploaded FileStatus = "UPLOADED"
	FileStatusImported FileStatus = "IMPORTED"
	FileStatusFailed   FileStatus = "FAILED"
)

// ImportFile tracks a spreadsheet uploaded through the admin API.
type ImportFile struct {
	ID           int64      `json:"id" db:"id"`
	StoragePath  string     `json:"storage_path" db:"storage_path"`
	FileName     string     `json:"file_name" db:"file_name"`
	Status       FileStatus `json:"status" db:"status"`
	CreatedCount int        `json:"created_count" db:"created_count"`
	UpdatedCount int        `json:"updated_count" db:"updated_count"`
	SkippedCount int        `json:"skipped_count" db:"skipped_count"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

type ImportCounts struct {
	Created int
	Updated int
	Skipped int
}
