package service

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"payroll-bot/internal/domain"
	"payroll-bot/pkg/calendar"
)

// DefaultWorkingDays is the number of PRESENT days that earns the full
// monthly salary.
const DefaultWorkingDays = 22

// EmployeeDirectory is the slice of EmployeeService that payroll reads.
type EmployeeDirectory interface {
	EmployeeLookup
	ListAll(ctx context.Context) iter.Seq2[domain.Employee, error]
}

// AttendanceReader is the slice of AttendanceService that payroll reads.
type AttendanceReader interface {
	LogsBetween(ctx context.Context, employeeID int64, from, to time.Time) ([]domain.AttendanceRecord, error)
}

// PayrollService derives payroll reports from salary and attendance. It
// reads employees and attendance but never writes them.
//
// Generating a period twice appends a second report; the newest report of a
// period is its current one and earlier ones stay in the history.
type PayrollService struct {
	Repo        domain.PayrollRepo
	Employees   EmployeeDirectory
	Attendance  AttendanceReader
	Locks       *Locker
	Async       *AsyncService
	Log         *zap.Logger
	WorkingDays int
	Now         func() time.Time
	NewID       func() string
}

func NewPayrollService(repo domain.PayrollRepo, employees EmployeeDirectory, attendance AttendanceReader,
	locks *Locker, async *AsyncService, log *zap.Logger, workingDays int) *PayrollService {
	if workingDays <= 0 {
		workingDays = DefaultWorkingDays
	}
	return &PayrollService{
		Repo:        repo,
		Employees:   employees,
		Attendance:  attendance,
		Locks:       locks,
		Async:       async,
		Log:         log,
		WorkingDays: workingDays,
		Now:         time.Now,
		NewID:       uuid.NewString,
	}
}

// NetSalary scales gross by daysPresent/workingDays, rounds to cents and
// clamps the result to [0, gross].
func NetSalary(gross decimal.Decimal, daysPresent, workingDays int) decimal.Decimal {
	if workingDays <= 0 || daysPresent <= 0 {
		return decimal.Zero
	}
	net := gross.Mul(decimal.NewFromInt(int64(daysPresent))).
		Div(decimal.NewFromInt(int64(workingDays))).
		Round(2)
	if net.GreaterThan(gross) {
		return gross
	}
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

func parsePeriod(month string, year int) (time.Month, error) {
	m, err := calendar.ParseMonth(month)
	if err != nil {
		return 0, domain.Invalid("month", err.Error())
	}
	if !calendar.ValidYear(year) {
		return 0, domain.Invalid("year", fmt.Sprintf("must be between %d and %d", calendar.MinYear, calendar.MaxYear))
	}
	return m, nil
}

// Generate computes and stores the report of employeeID for the period.
// Nothing is stored when any step fails.
func (s *PayrollService) Generate(ctx context.Context, employeeID int64, month string, year int) (domain.PayrollReport, error) {
	unlock := s.Locks.Lock(employeeID)
	defer unlock()

	emp, err := s.Employees.Get(ctx, employeeID)
	if err != nil {
		return domain.PayrollReport{}, err
	}
	m, err := parsePeriod(month, year)
	if err != nil {
		return domain.PayrollReport{}, err
	}

	from, to := calendar.MonthBounds(year, m)
	records, err := s.Attendance.LogsBetween(ctx, employeeID, from, to)
	if err != nil {
		return domain.PayrollReport{}, err
	}
	present := 0
	for _, r := range records {
		if r.Status == domain.StatusPresent {
			present++
		}
	}

	report := domain.PayrollReport{
		ID:          s.NewID(),
		EmployeeID:  employeeID,
		Month:       m,
		Year:        year,
		DaysPresent: present,
		WorkingDays: s.WorkingDays,
		GrossSalary: emp.Salary,
		NetSalary:   NetSalary(emp.Salary, present, s.WorkingDays),
		GeneratedAt: s.Now(),
	}
	if err := s.Repo.InsertReport(ctx, report); err != nil {
		return domain.PayrollReport{}, err
	}
	s.Log.Info("payroll generated",
		zap.Int64("employee_id", employeeID),
		zap.String("period", m.String()),
		zap.Int("year", year),
		zap.Int("days_present", present),
		zap.String("net_salary", report.NetSalary.StringFixed(2)),
	)
	return report, nil
}

// HistoryFor lists every report of the employee by (year, month), oldest first.
// Deleted employees keep their history.
func (s *PayrollService) HistoryFor(ctx context.Context, employeeID int64) ([]domain.PayrollReport, error) {
	if err := mustHaveExisted(ctx, s.Employees, employeeID); err != nil {
		return nil, err
	}
	return s.Repo.GetReports(ctx, employeeID)
}

// CurrentFor returns the newest report generated for the period.
func (s *PayrollService) CurrentFor(ctx context.Context, employeeID int64, month string, year int) (domain.PayrollReport, error) {
	if err := mustHaveExisted(ctx, s.Employees, employeeID); err != nil {
		return domain.PayrollReport{}, err
	}
	m, err := parsePeriod(month, year)
	if err != nil {
		return domain.PayrollReport{}, err
	}
	return s.Repo.LatestReport(ctx, employeeID, m, year)
}

// BatchResult is the outcome of one employee in GenerateForAll.
type BatchResult struct {
	EmployeeID int64
	Report     domain.PayrollReport
	Err        error
}

// GenerateForAll generates the period for every live employee on the worker
// pool. Per-employee failures are reported in the results.
func (s *PayrollService) GenerateForAll(ctx context.Context, month string, year int) ([]BatchResult, error) {
	if _, err := parsePeriod(month, year); err != nil {
		return nil, err
	}
	var ids []int64
	for e, err := range s.Employees.ListAll(ctx) {
		if err != nil {
			return nil, err
		}
		ids = append(ids, e.ID)
	}

	jobs := make([]func() (any, error), len(ids))
	for i, id := range ids {
		jobs[i] = func() (any, error) {
			return s.Generate(ctx, id, month, year)
		}
	}
	results := make([]BatchResult, len(ids))
	for i, res := range s.Async.RunAll(ctx, jobs) {
		results[i] = BatchResult{EmployeeID: ids[i], Err: res.Err}
		if rep, ok := res.Value.(domain.PayrollReport); ok && res.Err == nil {
			results[i].Report = rep
		}
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.Log.Info("batch payroll finished",
		zap.String("period", month),
		zap.Int("year", year),
		zap.Int("employees", len(results)),
		zap.Int("failed", failed),
	)
	return results, nil
}
