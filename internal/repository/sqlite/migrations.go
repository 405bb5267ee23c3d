package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const createEmployeesTable = `
CREATE TABLE IF NOT EXISTS employees (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    department TEXT NOT NULL,
    salary TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    deleted_at TEXT
);
`

const createAttendanceTable = `
CREATE TABLE IF NOT EXISTS attendance (
    employee_id INTEGER NOT NULL REFERENCES employees(id),
    date TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('PRESENT', 'ABSENT')),
    updated_at TEXT NOT NULL,
    PRIMARY KEY (employee_id, date)
);
`

const createPayrollReportsTable = `
CREATE TABLE IF NOT EXISTS payroll_reports (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    employee_id INTEGER NOT NULL REFERENCES employees(id),
    month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
    year INTEGER NOT NULL CHECK (year > 0),
    days_present INTEGER NOT NULL,
    working_days INTEGER NOT NULL,
    gross_salary TEXT NOT NULL,
    net_salary TEXT NOT NULL,
    generated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payroll_reports_period
    ON payroll_reports (employee_id, year, month);
`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`

func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{
		createEmployeesTable,
		createAttendanceTable,
		createPayrollReportsTable,
		createUsersTable,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
