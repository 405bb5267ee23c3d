package service

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"payroll-bot/internal/domain"
)

// listPageSize bounds how many employees ListAll reads per query.
const listPageSize = 100

// EmployeeService owns employee records.
type EmployeeService struct {
	Repo  domain.EmployeeRepo
	Locks *Locker
	Log   *zap.Logger
	Now   func() time.Time
}

func NewEmployeeService(repo domain.EmployeeRepo, locks *Locker, log *zap.Logger) *EmployeeService {
	return &EmployeeService{Repo: repo, Locks: locks, Log: log, Now: time.Now}
}

func validateEmployee(name, department string, salary decimal.Decimal) (string, string, error) {
	name = strings.TrimSpace(name)
	department = strings.TrimSpace(department)
	if name == "" {
		return "", "", domain.Invalid("name", "must not be empty")
	}
	if department == "" {
		return "", "", domain.Invalid("department", "must not be empty")
	}
	if !salary.IsPositive() {
		return "", "", domain.Invalid("salary", "must be greater than zero")
	}
	return name, department, nil
}

func (s *EmployeeService) Add(ctx context.Context, name, department string, salary decimal.Decimal) (domain.Employee, error) {
	name, department, err := validateEmployee(name, department, salary)
	if err != nil {
		return domain.Employee{}, err
	}
	now := s.Now()
	e, err := s.Repo.InsertEmployee(ctx, domain.Employee{
		Name:       name,
		Department: department,
		Salary:     salary,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return domain.Employee{}, err
	}
	s.Log.Info("employee added", zap.Int64("employee_id", e.ID), zap.String("department", e.Department))
	return e, nil
}

// Get returns a live employee.
func (s *EmployeeService) Get(ctx context.Context, id int64) (domain.Employee, error) {
	return s.Repo.GetEmployeeByID(ctx, id)
}

// Update replaces name, department and salary together; there is no partial update.
func (s *EmployeeService) Update(ctx context.Context, id int64, name, department string, salary decimal.Decimal) (domain.Employee, error) {
	unlock := s.Locks.Lock(id)
	defer unlock()

	if _, err := s.Repo.GetEmployeeByID(ctx, id); err != nil {
		return domain.Employee{}, err
	}
	name, department, err := validateEmployee(name, department, salary)
	if err != nil {
		return domain.Employee{}, err
	}
	e, err := s.Repo.UpdateEmployee(ctx, domain.Employee{
		ID:         id,
		Name:       name,
		Department: department,
		Salary:     salary,
		UpdatedAt:  s.Now(),
	})
	if err != nil {
		return domain.Employee{}, err
	}
	s.Log.Info("employee updated", zap.Int64("employee_id", id))
	return e, nil
}

// Delete removes the employee from the live set. Attendance and payroll
// history stay readable.
func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	unlock := s.Locks.Lock(id)
	defer unlock()

	if err := s.Repo.DeleteEmployee(ctx, id, s.Now()); err != nil {
		return err
	}
	s.Log.Info("employee deleted", zap.Int64("employee_id", id))
	return nil
}

// ListAll yields live employees in id order, one page per query. Each range
// over the sequence starts a fresh scan. A storage error is yielded once and
// ends the sequence.
func (s *EmployeeService) ListAll(ctx context.Context) iter.Seq2[domain.Employee, error] {
	return func(yield func(domain.Employee, error) bool) {
		var after int64
		for {
			page, err := s.Repo.ListEmployees(ctx, after, listPageSize)
			if err != nil {
				yield(domain.Employee{}, err)
				return
			}
			for _, e := range page {
				if !yield(e, nil) {
					return
				}
			}
			if len(page) < listPageSize {
				return
			}
			after = page[len(page)-1].ID
		}
	}
}

// Exists reports whether id was ever assigned, including deleted employees.
func (s *EmployeeService) Exists(ctx context.Context, id int64) (bool, error) {
	return s.Repo.EmployeeExists(ctx, id)
}
