package model

import (
	"path"
	"time"
)

// WeldPhoto is an inspection photo owned by exactly one WeldRecord.
type WeldPhoto struct {
	ID           int64     `json:"id" db:"id"`
	WeldID       int64     `json:"weld_id" db:"weld_id"`
	Photo        string    `json:"photo" db:"photo"`
	ReportNumber int       `json:"report_number" db:"report_number"`
	Caption      string    `json:"caption,omitempty" db:"caption"`
	UploadedAt   time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// FileName returns the base name of the stored object, or "no-photo".
func (p *WeldPhoto) FileName() string {
	if p.Photo == "" {
		return "no-photo"
	}
	return path.Base(p.Photo)
}
