package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"weld-inspection-db/internal/model"
	"weld-inspection-db/pkg/errors"
)

// MemoryStore keeps welds, photos and import files in process memory with
// the same key and cascade rules as the MySQL schema. It backs dry runs and
// tests.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	welds   map[int64]*model.WeldRecord
	byKey   map[model.WeldKey]int64
	photos  map[int64]*model.WeldPhoto
	files   map[int64]*model.ImportFile
	nowFunc func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		welds:   make(map[int64]*model.WeldRecord),
		byKey:   make(map[model.WeldKey]int64),
		photos:  make(map[int64]*model.WeldPhoto),
		files:   make(map[int64]*model.ImportFile),
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) FindByKey(ctx context.Context, section, weldID4 string) (*model.WeldRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byKey[model.WeldKey{Section: section, WeldID4: weldID4}]
	if !ok {
		return nil, errors.ErrRecordNotFound
	}
	w := *m.welds[id]
	return &w, nil
}

func (m *MemoryStore) Insert(ctx context.Context, rec *model.WeldRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rec.Key()
	if _, taken := m.byKey[key]; taken {
		return fmt.Errorf("%w: %s", errors.ErrDuplicateKey, key)
	}

	rec.ID = m.id()
	stored := *rec
	m.welds[rec.ID] = &stored
	m.byKey[key] = rec.ID
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, rec *model.WeldRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.welds[rec.ID]
	if !ok {
		return errors.ErrRecordNotFound
	}

	key := rec.Key()
	if owner, taken := m.byKey[key]; taken && owner != rec.ID {
		return fmt.Errorf("%w: %s", errors.ErrDuplicateKey, key)
	}

	delete(m.byKey, current.Key())
	stored := *rec
	stored.CreatedAt = current.CreatedAt
	m.welds[rec.ID] = &stored
	m.byKey[key] = rec.ID
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id int64) (*model.WeldRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.welds[id]
	if !ok {
		return nil, errors.ErrRecordNotFound
	}
	out := *w
	return &out, nil
}

func (m *MemoryStore) List(ctx context.Context, filter model.WeldFilter) ([]model.WeldRecord, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := []model.WeldRecord{}
	for _, w := range m.welds {
		if filter.Side != "" && w.Side != filter.Side {
			continue
		}
		if filter.PassFail != "" && w.PassFail != filter.PassFail {
			continue
		}
		if filter.WeldType != "" && w.WeldType != filter.WeldType {
			continue
		}
		if filter.Report != nil && w.Report != *filter.Report {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(w.Section), q) &&
			!strings.Contains(strings.ToLower(w.WeldID), q) &&
			!strings.Contains(strings.ToLower(w.Inspector), q) {
			continue
		}
		matched = append(matched, *w)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Section != matched[j].Section {
			return matched[i].Section < matched[j].Section
		}
		return matched[i].WeldID4 < matched[j].WeldID4
	})

	total := len(matched)
	limit, offset := filter.Page()
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.welds[id]
	if !ok {
		return errors.ErrRecordNotFound
	}
	delete(m.byKey, w.Key())
	delete(m.welds, id)
	for pid, p := range m.photos {
		if p.WeldID == id {
			delete(m.photos, pid)
		}
	}
	return nil
}

// Count returns the number of stored weld records.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.welds)
}

func (m *MemoryStore) InsertPhoto(ctx context.Context, photo *model.WeldPhoto) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.welds[photo.WeldID]; !ok {
		return fmt.Errorf("insert photo for weld %d: %w", photo.WeldID, errors.ErrRecordNotFound)
	}
	photo.ID = m.id()
	stored := *photo
	m.photos[photo.ID] = &stored
	return nil
}

func (m *MemoryStore) GetPhoto(ctx context.Context, id int64) (*model.WeldPhoto, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.photos[id]
	if !ok {
		return nil, errors.ErrRecordNotFound
	}
	out := *p
	return &out, nil
}

func (m *MemoryStore) ListPhotos(ctx context.Context, weldID int64) ([]model.WeldPhoto, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	photos := []model.WeldPhoto{}
	for _, p := range m.photos {
		if p.WeldID == weldID {
			photos = append(photos, *p)
		}
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].ID < photos[j].ID })
	return photos, nil
}

func (m *MemoryStore) DeletePhoto(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.photos[id]; !ok {
		return errors.ErrRecordNotFound
	}
	delete(m.photos, id)
	return nil
}

func (m *MemoryStore) CreateFile(ctx context.Context, file *model.ImportFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	file.ID = m.id()
	file.CreatedAt = now
	file.UpdatedAt = now
	stored := *file
	m.files[file.ID] = &stored
	return nil
}

func (m *MemoryStore) GetFile(ctx context.Context, fileID int64) (*model.ImportFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[fileID]
	if !ok {
		return nil, errors.ErrRecordNotFound
	}
	out := *f
	return &out, nil
}

func (m *MemoryStore) UpdateFileStatus(ctx context.Context, fileID int64, status model.FileStatus, counts model.ImportCounts, errorMessage *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[fileID]
	if !ok {
		return errors.ErrRecordNotFound
	}
	f.Status = status
	f.CreatedCount = counts.Created
	f.UpdatedCount = counts.Updated
	f.SkippedCount = counts.Skipped
	f.ErrorMessage = errorMessage
	f.UpdatedAt = m.nowFunc()
	return nil
}
