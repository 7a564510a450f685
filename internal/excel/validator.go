package excel

import (
	"fmt"
	"unicode/utf8"

	"weld-inspection-db/internal/model"
	"weld-inspection-db/pkg/errors"
)

type fieldLimit struct {
	field string
	max   int
	value func(w *model.WeldRecord) *string
}

// Column widths of the welds table.
var fieldLimits = []fieldLimit{
	{"section", 100, func(w *model.WeldRecord) *string { return &w.Section }},
	{"side", 50, func(w *model.WeldRecord) *string { return &w.Side }},
	{"weld_id", 50, func(w *model.WeldRecord) *string { return &w.WeldID }},
	{"weld_id2", 50, func(w *model.WeldRecord) *string { return &w.WeldID2 }},
	{"weld_id3", 50, func(w *model.WeldRecord) *string { return &w.WeldID3 }},
	{"weld_id4", 50, func(w *model.WeldRecord) *string { return &w.WeldID4 }},
	{"table_6_1_criteria_1", 200, func(w *model.WeldRecord) *string { return &w.TableCriteria1 }},
	{"table_6_1_criteria_2", 200, func(w *model.WeldRecord) *string { return &w.TableCriteria2 }},
	{"table_6_1_criteria_3", 200, func(w *model.WeldRecord) *string { return &w.TableCriteria3 }},
	{"weld_type", 100, func(w *model.WeldRecord) *string { return &w.WeldType }},
	{"weld_size", 50, func(w *model.WeldRecord) *string { return &w.WeldSize }},
	{"wps_number", 100, func(w *model.WeldRecord) *string { return &w.WPSNumber }},
	{"inspection_utsw", 50, func(w *model.WeldRecord) *string { return &w.InspectionUTSW }},
	{"inspection_mt", 50, func(w *model.WeldRecord) *string { return &w.InspectionMT }},
	{"inspector", 200, func(w *model.WeldRecord) *string { return &w.Inspector }},
	{"pass_fail", 20, func(w *model.WeldRecord) *string { return &w.PassFail }},
	{"corrective_action_taken", 20, func(w *model.WeldRecord) *string { return &w.CorrectiveActionTaken }},
	{"repair_welder", 200, func(w *model.WeldRecord) *string { return &w.RepairWelder }},
	{"weld_process", 100, func(w *model.WeldRecord) *string { return &w.WeldProcess }},
}

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate reports problems with a parsed record. None of them stop an
// import on their own; the caller decides whether to skip or clamp.
func (v *Validator) Validate(rec *model.WeldRecord) []errors.ValidationError {
	var issues []errors.ValidationError

	// Rows sharing a section with a blank weld id4 collapse into one record.
	if rec.WeldID4 == "" {
		issues = append(issues, errors.ValidationError{
			Field:   "weld_id4",
			Value:   rec.WeldID4,
			Message: "blank weld id4, rows in the same section will overwrite each other",
		})
	}

	for _, l := range fieldLimits {
		s := *l.value(rec)
		if n := utf8.RuneCountInString(s); n > l.max {
			issues = append(issues, errors.ValidationError{
				Field:   l.field,
				Value:   s,
				Message: fmt.Sprintf("longer than %d characters", l.max),
			})
		}
	}

	return issues
}

// Clamp truncates over-long values to their column widths.
func (v *Validator) Clamp(rec *model.WeldRecord) {
	for _, l := range fieldLimits {
		p := l.value(rec)
		if utf8.RuneCountInString(*p) > l.max {
			*p = string([]rune(*p)[:l.max])
		}
	}
}
