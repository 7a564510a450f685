package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"weld-inspection-db/internal/model"
	"weld-inspection-db/pkg/errors"
)

type WeldRepository interface {
	// FindByKey returns errors.ErrRecordNotFound when no record has the key.
	FindByKey(ctx context.Context, section, weldID4 string) (*model.WeldRecord, error)
	// Insert sets rec.ID. It returns errors.ErrDuplicateKey when the key is taken.
	Insert(ctx context.Context, rec *model.WeldRecord) error
	// Update writes every column except id and created_at. It returns
	// errors.ErrRecordNotFound when no row has rec.ID.
	Update(ctx context.Context, rec *model.WeldRecord) error
	Get(ctx context.Context, id int64) (*model.WeldRecord, error)
	List(ctx context.Context, filter model.WeldFilter) ([]model.WeldRecord, int, error)
	// Delete removes the record and, through the foreign key, its photos.
	Delete(ctx context.Context, id int64) error
}

type weldRepository struct {
	db *sql.DB
}

func NewWeldRepository(db *sql.DB) WeldRepository {
	return &weldRepository{db: db}
}

const weldColumns = `id, report, side, section, weld_id, weld_id2, weld_id3, weld_id4,
	estimated_repair_length, total_weld_length,
	table_6_1_criteria_1, table_6_1_criteria_2, table_6_1_criteria_3,
	weld_type, weld_size, wps_number, inspection_utsw, inspection_mt, inspector,
	date, pass_fail, corrective_action_taken, repair_welder, repair_inspection_date,
	weld_process, note, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWeld(s rowScanner) (*model.WeldRecord, error) {
	var (
		w                        model.WeldRecord
		repairLength, totalLen   sql.NullFloat64
		date, repairInspectionAt sql.NullTime
	)
	err := s.Scan(&w.ID, &w.Report, &w.Side, &w.Section, &w.WeldID, &w.WeldID2, &w.WeldID3, &w.WeldID4,
		&repairLength, &totalLen,
		&w.TableCriteria1, &w.TableCriteria2, &w.TableCriteria3,
		&w.WeldType, &w.WeldSize, &w.WPSNumber, &w.InspectionUTSW, &w.InspectionMT, &w.Inspector,
		&date, &w.PassFail, &w.CorrectiveActionTaken, &w.RepairWelder, &repairInspectionAt,
		&w.WeldProcess, &w.Note, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}

	w.EstimatedRepairLength = floatPtr(repairLength)
	w.TotalWeldLength = floatPtr(totalLen)
	w.Date = timePtr(date)
	w.RepairInspectionDate = timePtr(repairInspectionAt)
	return &w, nil
}

func (r *weldRepository) FindByKey(ctx context.Context, section, weldID4 string) (*model.WeldRecord, error) {
	query := `SELECT ` + weldColumns + ` FROM welds WHERE section = ? AND weld_id4 = ?`

	w, err := scanWeld(r.db.QueryRowContext(ctx, query, section, weldID4))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find weld %s - %s: %w", section, weldID4, err)
	}
	return w, nil
}

func (r *weldRepository) Get(ctx context.Context, id int64) (*model.WeldRecord, error) {
	query := `SELECT ` + weldColumns + ` FROM welds WHERE id = ?`

	w, err := scanWeld(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get weld %d: %w", id, err)
	}
	return w, nil
}

func (r *weldRepository) Insert(ctx context.Context, rec *model.WeldRecord) error {
	query := `INSERT INTO welds (report, side, section, weld_id, weld_id2, weld_id3, weld_id4,
		estimated_repair_length, total_weld_length,
		table_6_1_criteria_1, table_6_1_criteria_2, table_6_1_criteria_3,
		weld_type, weld_size, wps_number, inspection_utsw, inspection_mt, inspector,
		date, pass_fail, corrective_action_taken, repair_welder, repair_inspection_date,
		weld_process, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	args := append(weldValues(rec), rec.CreatedAt, rec.UpdatedAt)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("%w: %s", errors.ErrDuplicateKey, rec.Key())
		}
		return fmt.Errorf("insert weld %s: %w", rec.Key(), err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert weld %s: %w", rec.Key(), err)
	}
	rec.ID = id
	return nil
}

func (r *weldRepository) Update(ctx context.Context, rec *model.WeldRecord) error {
	query := `UPDATE welds SET report = ?, side = ?, section = ?, weld_id = ?, weld_id2 = ?, weld_id3 = ?, weld_id4 = ?,
		estimated_repair_length = ?, total_weld_length = ?,
		table_6_1_criteria_1 = ?, table_6_1_criteria_2 = ?, table_6_1_criteria_3 = ?,
		weld_type = ?, weld_size = ?, wps_number = ?, inspection_utsw = ?, inspection_mt = ?, inspector = ?,
		date = ?, pass_fail = ?, corrective_action_taken = ?, repair_welder = ?, repair_inspection_date = ?,
		weld_process = ?, note = ?, updated_at = ?
		WHERE id = ?`

	args := append(weldValues(rec), rec.UpdatedAt, rec.ID)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("%w: %s", errors.ErrDuplicateKey, rec.Key())
		}
		return fmt.Errorf("update weld %d: %w", rec.ID, err)
	}

	// The DSN sets clientFoundRows, so an unchanged row still counts.
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update weld %d: %w", rec.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update weld %d: %w", rec.ID, errors.ErrRecordNotFound)
	}
	return nil
}

func (r *weldRepository) List(ctx context.Context, filter model.WeldFilter) ([]model.WeldRecord, int, error) {
	where, args := weldWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM welds`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count welds: %w", err)
	}

	limit, offset := filter.Page()
	query := `SELECT ` + weldColumns + ` FROM welds` + where + ` ORDER BY section, weld_id4 LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list welds: %w", err)
	}
	defer rows.Close()

	welds := []model.WeldRecord{}
	for rows.Next() {
		w, err := scanWeld(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan weld: %w", err)
		}
		welds = append(welds, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list welds: %w", err)
	}

	return welds, total, nil
}

func (r *weldRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM welds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete weld %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete weld %d: %w", id, err)
	}
	if n == 0 {
		return errors.ErrRecordNotFound
	}
	return nil
}

func weldValues(w *model.WeldRecord) []interface{} {
	return []interface{}{
		w.Report, w.Side, w.Section, w.WeldID, w.WeldID2, w.WeldID3, w.WeldID4,
		nullFloat(w.EstimatedRepairLength), nullFloat(w.TotalWeldLength),
		w.TableCriteria1, w.TableCriteria2, w.TableCriteria3,
		w.WeldType, w.WeldSize, w.WPSNumber, w.InspectionUTSW, w.InspectionMT, w.Inspector,
		nullTime(w.Date), w.PassFail, w.CorrectiveActionTaken, w.RepairWelder, nullTime(w.RepairInspectionDate),
		w.WeldProcess, w.Note,
	}
}

// weldWhere mirrors the admin list filters: exact matches on side,
// pass_fail, weld_type and report, substring search on section, weld_id and
// inspector.
func weldWhere(f model.WeldFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Side != "" {
		conds = append(conds, "side = ?")
		args = append(args, f.Side)
	}
	if f.PassFail != "" {
		conds = append(conds, "pass_fail = ?")
		args = append(args, f.PassFail)
	}
	if f.WeldType != "" {
		conds = append(conds, "weld_type = ?")
		args = append(args, f.WeldType)
	}
	if f.Report != nil {
		conds = append(conds, "report = ?")
		args = append(args, *f.Report)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + escapeLike(q) + "%"
		conds = append(conds, "(section LIKE ? OR weld_id LIKE ? OR inspector LIKE ?)")
		args = append(args, like, like, like)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
