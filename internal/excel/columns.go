package excel

import "strings"

// Expected header names. Matching is exact and case-sensitive; only the MT
// inspection column is located by ResolveMTColumn.
const (
	HeaderSection               = "Section"
	HeaderReport                = "Report"
	HeaderSide                  = "Side"
	HeaderWeldID                = "Weld ID"
	HeaderWeldID2               = "Weld ID2"
	HeaderWeldID3               = "Weld ID3"
	HeaderWeldID4               = "Weld ID4"
	HeaderEstimatedRepairLength = "Estimated Repair Length"
	HeaderTotalWeldLength       = "Total Weld Length"
	HeaderTableCriteria1        = "Table 6.1 AWS Visual Inspection Criteria 1"
	HeaderTableCriteria2        = "Table 6.1 AWS Visual Inspection Criteria 2"
	HeaderTableCriteria3        = "Table 6.1 AWS Visual Inspection Criteria 3"
	HeaderWeldType              = "Weld Type"
	HeaderWeldSize              = "Weld Size"
	HeaderWPSNumber             = "WPS #"
	HeaderInspectionUTSW        = "Inspection UTSW"
	HeaderInspector             = "Inspector"
	HeaderDate                  = "Date"
	HeaderPassFail              = "Pass_Fail"
	HeaderCorrectiveAction      = "Corrective Action Taken"
	HeaderRepairWelder          = "Repair Welder"
	HeaderRepairInspectionDate  = "Repair Inspection Date"
	HeaderWeldProcess           = "Weld Process"
	HeaderNote                  = "Note"
)

// ColumnMap names the header each WeldRecord field is read from.
// An empty header means the field has no source column.
type ColumnMap struct {
	Section               string
	Report                string
	Side                  string
	WeldID                string
	WeldID2               string
	WeldID3               string
	WeldID4               string
	EstimatedRepairLength string
	TotalWeldLength       string
	TableCriteria1        string
	TableCriteria2        string
	TableCriteria3        string
	WeldType              string
	WeldSize              string
	WPSNumber             string
	InspectionUTSW        string
	InspectionMT          string
	Inspector             string
	Date                  string
	PassFail              string
	CorrectiveAction      string
	RepairWelder          string
	RepairInspectionDate  string
	WeldProcess           string
	Note                  string
}

// NewColumnMap builds the mapping for one import run from the sheet's headers.
func NewColumnMap(headers []string) ColumnMap {
	mt, _ := ResolveMTColumn(headers)
	return ColumnMap{
		Section:               HeaderSection,
		Report:                HeaderReport,
		Side:                  HeaderSide,
		WeldID:                HeaderWeldID,
		WeldID2:               HeaderWeldID2,
		WeldID3:               HeaderWeldID3,
		WeldID4:               HeaderWeldID4,
		EstimatedRepairLength: HeaderEstimatedRepairLength,
		TotalWeldLength:       HeaderTotalWeldLength,
		TableCriteria1:        HeaderTableCriteria1,
		TableCriteria2:        HeaderTableCriteria2,
		TableCriteria3:        HeaderTableCriteria3,
		WeldType:              HeaderWeldType,
		WeldSize:              HeaderWeldSize,
		WPSNumber:             HeaderWPSNumber,
		InspectionUTSW:        HeaderInspectionUTSW,
		InspectionMT:          mt,
		Inspector:             HeaderInspector,
		Date:                  HeaderDate,
		PassFail:              HeaderPassFail,
		CorrectiveAction:      HeaderCorrectiveAction,
		RepairWelder:          HeaderRepairWelder,
		RepairInspectionDate:  HeaderRepairInspectionDate,
		WeldProcess:           HeaderWeldProcess,
		Note:                  HeaderNote,
	}
}

// ResolveMTColumn returns the first header whose uppercased form contains
// "MT". The exact name varies between exports ("MT", "MT-Test",
// "MT (Magnetic Testing)").
func ResolveMTColumn(headers []string) (string, bool) {
	for _, h := range headers {
		if strings.Contains(strings.ToUpper(h), "MT") {
			return h, true
		}
	}
	return "", false
}

// Missing lists the mapped headers that are absent from headers.
func (m ColumnMap) Missing(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, h := range m.fixed() {
		if !present[h] {
			missing = append(missing, h)
		}
	}
	return missing
}

func (m ColumnMap) fixed() []string {
	return []string{
		m.Section, m.Report, m.Side, m.WeldID, m.WeldID2, m.WeldID3, m.WeldID4,
		m.EstimatedRepairLength, m.TotalWeldLength,
		m.TableCriteria1, m.TableCriteria2, m.TableCriteria3,
		m.WeldType, m.WeldSize, m.WPSNumber, m.InspectionUTSW, m.Inspector,
		m.Date, m.PassFail, m.CorrectiveAction, m.RepairWelder,
		m.RepairInspectionDate, m.WeldProcess, m.Note,
	}
}
