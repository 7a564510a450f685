package importer

import (
	"context"
	"fmt"
	"time"

	"weld-inspection-db/internal/model"
	"weld-inspection-db/pkg/errors"
)

// Store is the slice of the weld repository the upsert engine needs.
// Insert must return errors.ErrDuplicateKey when the key already exists.
type Store interface {
	FindByKey(ctx context.Context, section, weldID4 string) (*model.WeldRecord, error)
	Insert(ctx context.Context, rec *model.WeldRecord) error
	Update(ctx context.Context, rec *model.WeldRecord) error
}

type Outcome int

const (
	Created Outcome = iota + 1
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "Created"
	case Updated:
		return "Updated"
	default:
		return "Unknown"
	}
}

type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Upsert creates rec or replaces every non-key field of the record already
// stored under rec's (Section, WeldID4). On return rec carries the stored ID
// and audit timestamps.
func (e *Engine) Upsert(ctx context.Context, rec *model.WeldRecord) (Outcome, error) {
	existing, err := e.store.FindByKey(ctx, rec.Section, rec.WeldID4)
	switch {
	case err == nil:
		return Updated, e.replace(ctx, existing, rec)
	case !errors.Is(err, errors.ErrRecordNotFound):
		return 0, fmt.Errorf("lookup %s: %w", rec.Key(), err)
	}

	now := e.now()
	rec.ID = 0
	rec.CreatedAt, rec.UpdatedAt = now, now
	err = e.store.Insert(ctx, rec)
	if err == nil {
		return Created, nil
	}
	if !errors.Is(err, errors.ErrDuplicateKey) {
		return 0, fmt.Errorf("create %s: %w", rec.Key(), err)
	}

	// Another writer inserted the key after our lookup.
	existing, err = e.store.FindByKey(ctx, rec.Section, rec.WeldID4)
	if err != nil {
		return 0, fmt.Errorf("lookup %s after conflict: %w", rec.Key(), err)
	}
	return Updated, e.replace(ctx, existing, rec)
}

func (e *Engine) replace(ctx context.Context, existing, rec *model.WeldRecord) error {
	existing.CopyFieldsFrom(rec)
	existing.UpdatedAt = e.now()
	if err := e.store.Update(ctx, existing); err != nil {
		return fmt.Errorf("update %s: %w", existing.Key(), err)
	}
	*rec = *existing
	return nil
}
