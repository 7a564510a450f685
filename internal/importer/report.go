package importer

import (
	"fmt"

	"weld-inspection-db/internal/model"
)

// Report summarises one import run. Skipped counts rows dropped by strict
// validation; rows without a section are not counted anywhere.
type Report struct {
	Columns  []string
	MTColumn string
	Created  int
	Updated  int
	Skipped  int
	Lines    []string
}

func (r *Report) Total() int {
	return r.Created + r.Updated
}

func (r *Report) Summary() string {
	return fmt.Sprintf("Total: %d (Created: %d, Updated: %d)", r.Total(), r.Created, r.Updated)
}

func (r *Report) Counts() model.ImportCounts {
	return model.ImportCounts{Created: r.Created, Updated: r.Updated, Skipped: r.Skipped}
}

func (r *Report) record(outcome Outcome, key model.WeldKey) string {
	switch outcome {
	case Created:
		r.Created++
	case Updated:
		r.Updated++
	}
	line := fmt.Sprintf("%s: %s", outcome, key)
	r.Lines = append(r.Lines, line)
	return line
}
