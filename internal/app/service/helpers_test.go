package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"payroll-bot/internal/repository/sqlite"
	"payroll-bot/pkg/workerpool"
)

type testEnv struct {
	Employees  *EmployeeService
	Attendance *AttendanceService
	Payroll    *PayrollService
	Auth       *AuthService
	Reports    *sqlite.SqlitePayrollRepo
	Locks      *Locker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "payroll.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pool := workerpool.NewWorkerPool(4, 8)
	t.Cleanup(pool.Close)

	log := zaptest.NewLogger(t)
	locks := NewLocker()
	employees := NewEmployeeService(sqlite.NewSqliteEmployeeRepo(db), locks, log)
	attendance := NewAttendanceService(sqlite.NewSqliteAttendanceRepo(db), employees, locks, log)
	reports := sqlite.NewSqlitePayrollRepo(db)
	payroll := NewPayrollService(reports, employees, attendance, locks, NewAsyncService(pool), log, DefaultWorkingDays)
	auth := NewAuthService(sqlite.NewSqliteUserRepo(db), "test-secret", time.Hour, log)

	return &testEnv{
		Employees:  employees,
		Attendance: attendance,
		Payroll:    payroll,
		Auth:       auth,
		Reports:    reports,
		Locks:      locks,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
