package db

import (
	"context"
	"database/sql"
	"fmt"
)

// The welds unique key is what keeps concurrent imports from creating two
// records for one (section, weld_id4). The key columns compare bytes, so
// "S1" and "s1" are different sections, as they are in MemoryStore.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS welds (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		report INT NOT NULL DEFAULT 0,
		side VARCHAR(50) NOT NULL DEFAULT '',
		section VARCHAR(100) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
		weld_id VARCHAR(50) NOT NULL DEFAULT '',
		weld_id2 VARCHAR(50) NOT NULL DEFAULT '',
		weld_id3 VARCHAR(50) NOT NULL DEFAULT '',
		weld_id4 VARCHAR(50) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL DEFAULT '',
		estimated_repair_length DOUBLE NULL,
		total_weld_length DOUBLE NULL,
		table_6_1_criteria_1 VARCHAR(200) NOT NULL DEFAULT '',
		table_6_1_criteria_2 VARCHAR(200) NOT NULL DEFAULT '',
		table_6_1_criteria_3 VARCHAR(200) NOT NULL DEFAULT '',
		weld_type VARCHAR(100) NOT NULL DEFAULT '',
		weld_size VARCHAR(50) NOT NULL DEFAULT '',
		wps_number VARCHAR(100) NOT NULL DEFAULT 'DWPS-SM-Special-B-3-N Rev 0',
		inspection_utsw VARCHAR(50) NOT NULL DEFAULT '',
		inspection_mt VARCHAR(50) NOT NULL DEFAULT '',
		inspector VARCHAR(200) NOT NULL DEFAULT '',
		date DATE NULL,
		pass_fail VARCHAR(20) NOT NULL DEFAULT '',
		corrective_action_taken VARCHAR(20) NOT NULL DEFAULT '',
		repair_welder VARCHAR(200) NOT NULL DEFAULT '',
		repair_inspection_date DATE NULL,
		weld_process VARCHAR(100) NOT NULL DEFAULT '',
		note TEXT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_welds_section_weld_id4 (section, weld_id4),
		KEY idx_welds_section (section)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS weld_photos (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		weld_id BIGINT NOT NULL,
		photo VARCHAR(255) NOT NULL,
		report_number INT NOT NULL,
		caption VARCHAR(500) NOT NULL DEFAULT '',
		uploaded_at DATETIME(6) NOT NULL,
		KEY idx_weld_photos_weld (weld_id),
		CONSTRAINT fk_weld_photos_weld FOREIGN KEY (weld_id) REFERENCES welds (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS import_files (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		storage_path VARCHAR(255) NOT NULL,
		file_name VARCHAR(255) NOT NULL,
		status VARCHAR(20) NOT NULL,
		created_count INT NOT NULL DEFAULT 0,
		updated_count INT NOT NULL DEFAULT 0,
		skipped_count INT NOT NULL DEFAULT 0,
		error_message TEXT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables if they do not exist yet. Existing tables
// are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
