// Package exceltest builds in-memory workbooks for tests.
package exceltest

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Workbook writes header and rows to the first sheet of a new workbook and
// returns the encoded .xlsx bytes. A nil value leaves the cell blank.
func Workbook(t testing.TB, header []string, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, h := range header {
		setCell(t, f, sheet, i+1, 1, h)
	}
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			setCell(t, f, sheet, c+1, r+2, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.Clone(buf.Bytes())
}

// Headers is the full expected header row, with the MT column named mt.
func Headers(mt string) []string {
	return []string{
		"Section", "Report", "Side", "Weld ID", "Weld ID2", "Weld ID3", "Weld ID4",
		"Estimated Repair Length", "Total Weld Length",
		"Table 6.1 AWS Visual Inspection Criteria 1",
		"Table 6.1 AWS Visual Inspection Criteria 2",
		"Table 6.1 AWS Visual Inspection Criteria 3",
		"Weld Type", "Weld Size", "WPS #", "Inspection UTSW", mt, "Inspector",
		"Date", "Pass_Fail", "Corrective Action Taken", "Repair Welder",
		"Repair Inspection Date", "Weld Process", "Note",
	}
}

func setCell(t testing.TB, f *excelize.File, sheet string, col, row int, v interface{}) {
	t.Helper()

	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		t.Fatalf("cell name: %v", err)
	}
	if err := f.SetCellValue(sheet, axis, v); err != nil {
		t.Fatalf("set %s: %v", axis, err)
	}
}
