package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"payroll-bot/internal/domain"
	"payroll-bot/pkg/calendar"
)

// EmployeeLookup is the slice of EmployeeService that attendance and payroll read.
type EmployeeLookup interface {
	Get(ctx context.Context, id int64) (domain.Employee, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

var (
	minDate = time.Date(calendar.MinYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(calendar.MaxYear, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// AttendanceService records one status per employee per day. Records are
// overwritten, never deleted.
type AttendanceService struct {
	Repo      domain.AttendanceRepo
	Employees EmployeeLookup
	Locks     *Locker
	Log       *zap.Logger
	Now       func() time.Time
}

func NewAttendanceService(repo domain.AttendanceRepo, employees EmployeeLookup, locks *Locker, log *zap.Logger) *AttendanceService {
	return &AttendanceService{Repo: repo, Employees: employees, Locks: locks, Log: log, Now: time.Now}
}

// Track upserts the status of a live employee for date.
func (s *AttendanceService) Track(ctx context.Context, employeeID int64, date time.Time, status string) (domain.AttendanceRecord, error) {
	unlock := s.Locks.Lock(employeeID)
	defer unlock()

	if _, err := s.Employees.Get(ctx, employeeID); err != nil {
		return domain.AttendanceRecord{}, err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return domain.AttendanceRecord{}, err
	}
	if date.IsZero() {
		return domain.AttendanceRecord{}, domain.Invalid("date", "must be set")
	}
	day := calendar.Day(date)
	if !calendar.ValidYear(day.Year()) {
		return domain.AttendanceRecord{}, domain.Invalid("date", fmt.Sprintf("year must be between %d and %d", calendar.MinYear, calendar.MaxYear))
	}
	rec := domain.AttendanceRecord{
		EmployeeID: employeeID,
		Date:       day,
		Status:     st,
		UpdatedAt:  s.Now(),
	}
	if err := s.Repo.UpsertAttendance(ctx, rec); err != nil {
		return domain.AttendanceRecord{}, err
	}
	s.Log.Info("attendance tracked",
		zap.Int64("employee_id", employeeID),
		zap.String("date", rec.Date.Format(calendar.DateLayout)),
		zap.String("status", string(st)),
	)
	return rec, nil
}

// LogsFor returns every record of the employee, ascending by date. Deleted
// employees keep their log; ids never assigned are NotFound.
func (s *AttendanceService) LogsFor(ctx context.Context, employeeID int64) ([]domain.AttendanceRecord, error) {
	return s.LogsBetween(ctx, employeeID, minDate, maxDate)
}

// LogsBetween is LogsFor bounded to from..to, both inclusive.
func (s *AttendanceService) LogsBetween(ctx context.Context, employeeID int64, from, to time.Time) ([]domain.AttendanceRecord, error) {
	if err := mustHaveExisted(ctx, s.Employees, employeeID); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, domain.Invalid("range", "end date is before start date")
	}
	from, to = calendar.Day(from), calendar.Day(to)
	if from.Before(minDate) {
		from = minDate
	}
	if to.After(maxDate) {
		to = maxDate
	}
	return s.Repo.GetAttendance(ctx, employeeID, from, to)
}

func mustHaveExisted(ctx context.Context, employees EmployeeLookup, id int64) error {
	ok, err := employees.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("employee", id)
	}
	return nil
}
