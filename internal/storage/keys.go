package storage

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	importPrefix = "imports"
	photoPrefix  = "weld_photos"
)

// ImportKey names the object an uploaded spreadsheet is stored under.
func ImportKey() string {
	return path.Join(importPrefix, uuid.NewString()+".xlsx")
}

// PhotoKey names a weld photo object, partitioned by upload day. The file
// extension of the original name is kept, lowercased.
func PhotoKey(uploadedAt time.Time, originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	return path.Join(photoPrefix, uploadedAt.UTC().Format("2006/01/02"), uuid.NewString()+ext)
}
