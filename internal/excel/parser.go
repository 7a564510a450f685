package excel

import (
	"weld-inspection-db/internal/model"
)

type Parser struct {
	defaultWPS string
}

func NewParser(defaultWPS string) *Parser {
	if defaultWPS == "" {
		defaultWPS = model.DefaultWPSNumber
	}
	return &Parser{defaultWPS: defaultWPS}
}

// ParseRow converts one sheet row into a weld record. It reports false for
// rows with a blank section, which are layout noise (trailing rows, spacer
// rows) rather than data.
func (p *Parser) ParseRow(row Row, cols ColumnMap) (*model.WeldRecord, bool) {
	section := String(row.Get(cols.Section))
	if section == "" {
		return nil, false
	}

	wps := String(row.Get(cols.WPSNumber))
	if wps == "" {
		wps = p.defaultWPS
	}

	return &model.WeldRecord{
		Report:                IntOrDefault(row.Get(cols.Report), 0),
		Side:                  String(row.Get(cols.Side)),
		Section:               section,
		WeldID:                String(row.Get(cols.WeldID)),
		WeldID2:               String(row.Get(cols.WeldID2)),
		WeldID3:               String(row.Get(cols.WeldID3)),
		WeldID4:               String(row.Get(cols.WeldID4)),
		EstimatedRepairLength: OptionalFloat(row.Get(cols.EstimatedRepairLength)),
		TotalWeldLength:       OptionalFloat(row.Get(cols.TotalWeldLength)),
		TableCriteria1:        String(row.Get(cols.TableCriteria1)),
		TableCriteria2:        String(row.Get(cols.TableCriteria2)),
		TableCriteria3:        String(row.Get(cols.TableCriteria3)),
		WeldType:              String(row.Get(cols.WeldType)),
		WeldSize:              String(row.Get(cols.WeldSize)),
		WPSNumber:             wps,
		InspectionUTSW:        String(row.Get(cols.InspectionUTSW)),
		InspectionMT:          String(row.Get(cols.InspectionMT)),
		Inspector:             String(row.Get(cols.Inspector)),
		Date:                  OptionalDate(row.Get(cols.Date)),
		PassFail:              String(row.Get(cols.PassFail)),
		CorrectiveActionTaken: String(row.Get(cols.CorrectiveAction)),
		RepairWelder:          String(row.Get(cols.RepairWelder)),
		RepairInspectionDate:  OptionalDate(row.Get(cols.RepairInspectionDate)),
		WeldProcess:           String(row.Get(cols.WeldProcess)),
		Note:                  String(row.Get(cols.Note)),
	}, true
}
