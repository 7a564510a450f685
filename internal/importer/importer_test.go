package importer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"weld-inspection-db/internal/db"
	"weld-inspection-db/internal/excel"
	"weld-inspection-db/internal/excel/exceltest"
	"weld-inspection-db/internal/model"
	"weld-inspection-db/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	colSection  = 0
	colReport   = 1
	colWeldID4  = 6
	colTotalLen = 8
	colWPS      = 14
	colMT       = 16
	colDate     = 18
	colNote     = 24
)

func sheetRow(section, report, weldID4 interface{}) []interface{} {
	row := make([]interface{}, 25)
	row[colSection] = section
	row[colReport] = report
	row[colWeldID4] = weldID4
	return row
}

func newImporter(store Store, strict bool, out *bytes.Buffer) *Importer {
	strategy := excel.NewExcelStrategy(excel.Options{})
	opts := Options{Strict: strict}
	if out != nil {
		opts.Out = out
	}
	return New(strategy, store, opts)
}

func runBytes(t *testing.T, im *Importer, data []byte) *Report {
	t.Helper()
	report, err := im.Run(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	return report
}

func TestTwoRunScenario(t *testing.T) {
	store := db.NewMemoryStore()
	headers := exceltest.Headers("MT-Test")

	first := sheetRow("S1", "5.0", "W1")
	first[colMT] = "Accept"
	var out bytes.Buffer
	report := runBytes(t, newImporter(store, false, &out), exceltest.Workbook(t, headers, first))

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, "MT-Test", report.MTColumn)
	assert.Equal(t, []string{"Created: S1 - W1"}, report.Lines)
	assert.Contains(t, out.String(), `Columns found: ["Section" "Report"`)
	assert.Contains(t, out.String(), "Created: S1 - W1\n")
	assert.True(t, strings.HasSuffix(out.String(), "Total: 1 (Created: 1, Updated: 0)\n"))

	stored, err := store.FindByKey(context.Background(), "S1", "W1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Report)
	assert.Equal(t, "Accept", stored.InspectionMT)
	assert.Equal(t, model.DefaultWPSNumber, stored.WPSNumber)
	createdAt := stored.CreatedAt

	out.Reset()
	report = runBytes(t, newImporter(store, false, &out), exceltest.Workbook(t, headers, sheetRow("S1", "6.0", "W1")))

	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, "Total: 1 (Created: 0, Updated: 1)", report.Summary())
	assert.Contains(t, out.String(), "Updated: S1 - W1\n")
	assert.Equal(t, 1, store.Count())

	stored, err = store.FindByKey(context.Background(), "S1", "W1")
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Report)
	assert.Equal(t, "", stored.InspectionMT, "full replace clears fields blank in the new row")
	assert.True(t, createdAt.Equal(stored.CreatedAt))
	assert.False(t, stored.UpdatedAt.Before(createdAt))
}

func TestImportIsIdempotent(t *testing.T) {
	store := db.NewMemoryStore()
	headers := exceltest.Headers("MT")

	a := sheetRow("S1", 3, "W1")
	a[colTotalLen] = 12.5
	a[colDate] = "03/14/2024"
	a[colNote] = "root pass"
	b := sheetRow("S1", 3, "W2")
	b[colWPS] = "WPS-42"
	data := exceltest.Workbook(t, headers, a, b)

	runBytes(t, newImporter(store, false, nil), data)
	before, _, err := store.List(context.Background(), model.WeldFilter{})
	require.NoError(t, err)

	report := runBytes(t, newImporter(store, false, nil), data)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 2, report.Updated)

	after, _, err := store.List(context.Background(), model.WeldFilter{})
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		x, y := before[i], after[i]
		x.UpdatedAt = y.UpdatedAt
		assert.Equal(t, x, y)
	}
	assert.Equal(t, "WPS-42", after[1].WPSNumber)
}

func TestCompositeKeyUniqueness(t *testing.T) {
	store := db.NewMemoryStore()
	data := exceltest.Workbook(t, exceltest.Headers("MT"),
		sheetRow("S1", 1, "W1"),
		sheetRow("S1", 2, "W2"),
		sheetRow("S2", 3, "W1"),
		sheetRow("S1", 4, "W1"),
	)

	report := runBytes(t, newImporter(store, false, nil), data)
	assert.Equal(t, 3, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 4, report.Total())
	assert.Equal(t, 3, store.Count())

	w, err := store.FindByKey(context.Background(), "S1", "W1")
	require.NoError(t, err)
	assert.Equal(t, 4, w.Report, "last row for a key wins")
}

func TestBlankSectionRowsAreSkipped(t *testing.T) {
	store := db.NewMemoryStore()
	data := exceltest.Workbook(t, exceltest.Headers("MT"),
		sheetRow(nil, 1, "W1"),
		sheetRow("   ", 2, "W2"),
		sheetRow("S1", 3, "W3"),
	)

	report := runBytes(t, newImporter(store, false, nil), data)
	assert.Equal(t, 1, report.Total())
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 1, store.Count())
}

func TestMTColumnNotFound(t *testing.T) {
	store := db.NewMemoryStore()
	data := exceltest.Workbook(t, []string{"Section", "Report", "Weld ID4", "Other"},
		[]interface{}{"S1", "7.0", "W1", "Accept"},
	)

	report := runBytes(t, newImporter(store, false, nil), data)
	assert.Equal(t, "", report.MTColumn)

	w, err := store.FindByKey(context.Background(), "S1", "W1")
	require.NoError(t, err)
	assert.Equal(t, "", w.InspectionMT)
	assert.Equal(t, 7, w.Report)
}

func TestValidationIssues(t *testing.T) {
	long := strings.Repeat("x", 120)
	data := exceltest.Workbook(t, exceltest.Headers("MT"),
		sheetRow("S1", 1, nil),
		sheetRow(long, 2, "W2"),
		sheetRow("S1", 3, "W3"),
	)

	t.Run("lenient imports and truncates", func(t *testing.T) {
		store := db.NewMemoryStore()
		report := runBytes(t, newImporter(store, false, nil), data)
		assert.Equal(t, 3, report.Created)
		assert.Equal(t, 0, report.Skipped)

		_, err := store.FindByKey(context.Background(), "S1", "")
		assert.NoError(t, err)
		_, err = store.FindByKey(context.Background(), strings.Repeat("x", 100), "W2")
		assert.NoError(t, err)
	})

	t.Run("strict skips", func(t *testing.T) {
		store := db.NewMemoryStore()
		report := runBytes(t, newImporter(store, true, nil), data)
		assert.Equal(t, 1, report.Created)
		assert.Equal(t, 2, report.Skipped)
		assert.Equal(t, model.ImportCounts{Created: 1, Skipped: 2}, report.Counts())
	})
}

func TestInvalidFileAbortsBeforeRows(t *testing.T) {
	store := db.NewMemoryStore()
	var out bytes.Buffer

	report, err := newImporter(store, false, &out).Run(context.Background(), strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, errors.ErrInvalidFileFormat)
	assert.Nil(t, report)
	assert.Empty(t, out.String())
	assert.Equal(t, 0, store.Count())
}

func TestRunFile(t *testing.T) {
	store := db.NewMemoryStore()
	im := newImporter(store, false, nil)

	_, err := im.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, errors.ErrFileNotFound)

	path := filepath.Join(t.TempDir(), "welds.xlsx")
	require.NoError(t, os.WriteFile(path, exceltest.Workbook(t, exceltest.Headers("MT"), sheetRow("S1", 1, "W1")), 0o600))

	report, err := im.RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
}

// flakyStore fails every Insert after the first n.
type flakyStore struct {
	*db.MemoryStore
	n int
}

func (s *flakyStore) Insert(ctx context.Context, rec *model.WeldRecord) error {
	if s.n == 0 {
		return fmt.Errorf("connection lost")
	}
	s.n--
	return s.MemoryStore.Insert(ctx, rec)
}

func TestStoreFailureReturnsPartialReport(t *testing.T) {
	store := &flakyStore{MemoryStore: db.NewMemoryStore(), n: 1}
	data := exceltest.Workbook(t, exceltest.Headers("MT"),
		sheetRow("S1", 1, "W1"),
		sheetRow("S1", 2, "W2"),
		sheetRow("S1", 3, "W3"),
	)

	report, err := newImporter(store, false, nil).Run(context.Background(), bytes.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, store.Count())
}

func TestRunHonoursCancellation(t *testing.T) {
	store := db.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := exceltest.Workbook(t, exceltest.Headers("MT"), sheetRow("S1", 1, "W1"))
	_, err := newImporter(store, false, nil).Run(ctx, bytes.NewReader(data))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.Count())
}
