package sqlite

import (
	"context"
	"database/sql"
	"time"

	"payroll-bot/internal/domain"
	"payroll-bot/pkg/calendar"
)

type SqliteAttendanceRepo struct {
	db *sql.DB
}

func NewSqliteAttendanceRepo(db *sql.DB) *SqliteAttendanceRepo {
	return &SqliteAttendanceRepo{db: db}
}

func (r *SqliteAttendanceRepo) UpsertAttendance(ctx context.Context, rec domain.AttendanceRecord) error {
	return withTx(ctx, r.db, "upsert attendance", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO attendance (employee_id, date, status, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (employee_id, date) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
			rec.EmployeeID,
			rec.Date.Format(calendar.DateLayout),
			string(rec.Status),
			formatTime(rec.UpdatedAt),
		)
		return err
	})
}

func (r *SqliteAttendanceRepo) GetAttendance(ctx context.Context, employeeID int64, from, to time.Time) ([]domain.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT employee_id, date, status, updated_at FROM attendance
		 WHERE employee_id = ? AND date BETWEEN ? AND ? ORDER BY date`,
		employeeID,
		from.Format(calendar.DateLayout),
		to.Format(calendar.DateLayout),
	)
	if err != nil {
		return nil, storageErr("get attendance", err)
	}
	defer rows.Close()

	records := []domain.AttendanceRecord{}
	for rows.Next() {
		var (
			rec             domain.AttendanceRecord
			date, updatedAt string
			status          string
		)
		if err := rows.Scan(&rec.EmployeeID, &date, &status, &updatedAt); err != nil {
			return nil, storageErr("get attendance", err)
		}
		if rec.Date, err = time.Parse(calendar.DateLayout, date); err != nil {
			return nil, storageErr("get attendance", err)
		}
		if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, storageErr("get attendance", err)
		}
		rec.Status = domain.AttendanceStatus(status)
		records = append(records, rec)
	}
	return records, storageErr("get attendance", rows.Err())
}
