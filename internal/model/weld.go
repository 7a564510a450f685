package model

import "time"

// DefaultWPSNumber is the welding procedure specification most rows share;
// the source sheet only spells out exceptions.
const DefaultWPSNumber = "DWPS-SM-Special-B-3-N Rev 0"

// WeldRecord is one weld inspection, unique per (Section, WeldID4).
type WeldRecord struct {
	ID                    int64      `json:"id" db:"id"`
	Report                int        `json:"report" db:"report"`
	Side                  string     `json:"side" db:"side"`
	Section               string     `json:"section" db:"section"`
	WeldID                string     `json:"weld_id" db:"weld_id"`
	WeldID2               string     `json:"weld_id2" db:"weld_id2"`
	WeldID3               string     `json:"weld_id3" db:"weld_id3"`
	WeldID4               string     `json:"weld_id4" db:"weld_id4"`
	EstimatedRepairLength *float64   `json:"estimated_repair_length" db:"estimated_repair_length"`
	TotalWeldLength       *float64   `json:"total_weld_length" db:"total_weld_length"`
	TableCriteria1        string     `json:"table_6_1_criteria_1" db:"table_6_1_criteria_1"`
	TableCriteria2        string     `json:"table_6_1_criteria_2" db:"table_6_1_criteria_2"`
	TableCriteria3        string     `json:"table_6_1_criteria_3" db:"table_6_1_criteria_3"`
	WeldType              string     `json:"weld_type" db:"weld_type"`
	WeldSize              string     `json:"weld_size" db:"weld_size"`
	WPSNumber             string     `json:"wps_number" db:"wps_number"`
	InspectionUTSW        string     `json:"inspection_utsw" db:"inspection_utsw"`
	InspectionMT          string     `json:"inspection_mt" db:"inspection_mt"`
	Inspector             string     `json:"inspector" db:"inspector"`
	Date                  *time.Time `json:"date" db:"date"`
	PassFail              string     `json:"pass_fail" db:"pass_fail"`
	CorrectiveActionTaken string     `json:"corrective_action_taken" db:"corrective_action_taken"`
	RepairWelder          string     `json:"repair_welder" db:"repair_welder"`
	RepairInspectionDate  *time.Time `json:"repair_inspection_date" db:"repair_inspection_date"`
	WeldProcess           string     `json:"weld_process" db:"weld_process"`
	Note                  string     `json:"note" db:"note"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

// WeldKey is the business key of a WeldRecord.
type WeldKey struct {
	Section string
	WeldID4 string
}

func (w *WeldRecord) Key() WeldKey {
	return WeldKey{Section: w.Section, WeldID4: w.WeldID4}
}

func (k WeldKey) String() string {
	return k.Section + " - " + k.WeldID4
}

// CopyFieldsFrom overwrites every non-key, non-audit field with the values of src.
func (w *WeldRecord) CopyFieldsFrom(src *WeldRecord) {
	id, section, weldID4 := w.ID, w.Section, w.WeldID4
	createdAt, updatedAt := w.CreatedAt, w.UpdatedAt
	*w = *src
	w.ID, w.Section, w.WeldID4 = id, section, weldID4
	w.CreatedAt, w.UpdatedAt = createdAt, updatedAt
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// WeldFilter narrows admin list queries. Zero values mean "no filter".
type WeldFilter struct {
	Side     string
	PassFail string
	WeldType string
	Report   *int
	Search   string
	Limit    int
	Offset   int
}

// Page returns the effective limit and offset: the limit defaults to
// DefaultListLimit and is capped at MaxListLimit, negative offsets become 0.
func (f WeldFilter) Page() (limit, offset int) {
	limit = f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset = f.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
