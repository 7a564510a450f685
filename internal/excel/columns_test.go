package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMTColumn(t *testing.T) {
	col, ok := ResolveMTColumn([]string{"MT-Test", "Other"})
	assert.True(t, ok)
	assert.Equal(t, "MT-Test", col)

	col, ok = ResolveMTColumn([]string{"Section", "Inspection mt (Magnetic Testing)", "MT"})
	assert.True(t, ok)
	assert.Equal(t, "Inspection mt (Magnetic Testing)", col, "first match in header order wins")

	col, ok = ResolveMTColumn([]string{"Section", "Report", "Other"})
	assert.False(t, ok)
	assert.Equal(t, "", col)

	_, ok = ResolveMTColumn(nil)
	assert.False(t, ok)
}

func TestNewColumnMap(t *testing.T) {
	cols := NewColumnMap([]string{"Section", "Weld ID4", "MT (Magnetic Testing)"})
	assert.Equal(t, "MT (Magnetic Testing)", cols.InspectionMT)
	assert.Equal(t, HeaderSection, cols.Section)
	assert.Equal(t, HeaderWPSNumber, cols.WPSNumber)

	cols = NewColumnMap([]string{"Section"})
	assert.Equal(t, "", cols.InspectionMT)
}

func TestColumnMapMissing(t *testing.T) {
	cols := NewColumnMap([]string{"Section", "Report"})
	missing := cols.Missing([]string{"Section", "Report"})

	assert.Contains(t, missing, HeaderWeldID4)
	assert.Contains(t, missing, HeaderNote)
	assert.NotContains(t, missing, HeaderSection)
	assert.NotContains(t, missing, "")
}
