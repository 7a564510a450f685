package model

import "time"

type ImportJob struct {
	FileID      int64  `json:"file_id"`
	StoragePath string `json:"storage_path"`
	Sheet       string `json:"sheet,omitempty"`
}

type ImportStatusResponse struct {
	FileID       int64     `json:"file_id"`
	FileName     string    `json:"file_name"`
	Status       string    `json:"status"`
	Created      int       `json:"created"`
	Updated      int       `json:"updated"`
	Skipped      int       `json:"skipped"`
	Total        int       `json:"total"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WeldRequest is the admin API body for creating or replacing a weld record.
type WeldRequest struct {
	Report                int      `json:"report" validate:"gte=0"`
	Side                  string   `json:"side" validate:"max=50"`
	Section               string   `json:"section" validate:"required,max=100"`
	WeldID                string   `json:"weld_id" validate:"max=50"`
	WeldID2               string   `json:"weld_id2" validate:"max=50"`
	WeldID3               string   `json:"weld_id3" validate:"max=50"`
	WeldID4               string   `json:"weld_id4" validate:"max=50"`
	EstimatedRepairLength *float64 `json:"estimated_repair_length"`
	TotalWeldLength       *float64 `json:"total_weld_length"`
	TableCriteria1        string   `json:"table_6_1_criteria_1" validate:"max=200"`
	TableCriteria2        string   `json:"table_6_1_criteria_2" validate:"max=200"`
	TableCriteria3        string   `json:"table_6_1_criteria_3" validate:"max=200"`
	WeldType              string   `json:"weld_type" validate:"max=100"`
	WeldSize              string   `json:"weld_size" validate:"max=50"`
	WPSNumber             string   `json:"wps_number" validate:"max=100"`
	InspectionUTSW        string   `json:"inspection_utsw" validate:"max=50"`
	InspectionMT          string   `json:"inspection_mt" validate:"max=50"`
	Inspector             string   `json:"inspector" validate:"max=200"`
	Date                  string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	PassFail              string   `json:"pass_fail" validate:"max=20"`
	CorrectiveActionTaken string   `json:"corrective_action_taken" validate:"max=20"`
	RepairWelder          string   `json:"repair_welder" validate:"max=200"`
	RepairInspectionDate  string   `json:"repair_inspection_date" validate:"omitempty,datetime=2006-01-02"`
	WeldProcess           string   `json:"weld_process" validate:"max=100"`
	Note                  string   `json:"note"`
}

type WeldListResponse struct {
	Items  []WeldRecord `json:"items"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}
