package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"payroll-bot/internal/domain"
)

type SqlitePayrollRepo struct {
	db *sql.DB
}

func NewSqlitePayrollRepo(db *sql.DB) *SqlitePayrollRepo {
	return &SqlitePayrollRepo{db: db}
}

const reportColumns = `id, employee_id, month, year, days_present, working_days, gross_salary, net_salary, generated_at`

func scanReport(row rowScanner) (domain.PayrollReport, error) {
	var (
		rep         domain.PayrollReport
		month       int
		generatedAt string
		err         error
	)
	if err = row.Scan(&rep.ID, &rep.EmployeeID, &month, &rep.Year, &rep.DaysPresent,
		&rep.WorkingDays, &rep.GrossSalary, &rep.NetSalary, &generatedAt); err != nil {
		return rep, err
	}
	rep.Month = time.Month(month)
	rep.GeneratedAt, err = parseTime(generatedAt)
	return rep, err
}

func (r *SqlitePayrollRepo) InsertReport(ctx context.Context, rep domain.PayrollReport) error {
	return withTx(ctx, r.db, "insert payroll report", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO payroll_reports (`+reportColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rep.ID, rep.EmployeeID, int(rep.Month), rep.Year, rep.DaysPresent,
			rep.WorkingDays, rep.GrossSalary, rep.NetSalary, formatTime(rep.GeneratedAt),
		)
		if isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "payroll report", Key: rep.ID}
		}
		return err
	})
}

func (r *SqlitePayrollRepo) GetReports(ctx context.Context, employeeID int64) ([]domain.PayrollReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM payroll_reports WHERE employee_id = ? ORDER BY year, month, seq`,
		employeeID,
	)
	if err != nil {
		return nil, storageErr("get payroll reports", err)
	}
	defer rows.Close()

	reports := []domain.PayrollReport{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, storageErr("get payroll reports", err)
		}
		reports = append(reports, rep)
	}
	return reports, storageErr("get payroll reports", rows.Err())
}

func (r *SqlitePayrollRepo) LatestReport(ctx context.Context, employeeID int64, month time.Month, year int) (domain.PayrollReport, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM payroll_reports
		 WHERE employee_id = ? AND month = ? AND year = ? ORDER BY seq DESC LIMIT 1`,
		employeeID, int(month), year,
	)
	rep, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rep, domain.NotFound("payroll report", fmtPeriod(employeeID, month, year))
	}
	return rep, storageErr("latest payroll report", err)
}

func fmtPeriod(employeeID int64, month time.Month, year int) string {
	return fmt.Sprintf("%d/%s %d", employeeID, month, year)
}
