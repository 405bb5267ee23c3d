package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type EmployeeRepo interface {
	InsertEmployee(ctx context.Context, e Employee) (Employee, error)
	// GetEmployeeByID returns only live employees.
	GetEmployeeByID(ctx context.Context, id int64) (Employee, error)
	// ListEmployees returns up to limit live employees with ID > afterID, in ID order.
	ListEmployees(ctx context.Context, afterID int64, limit int) ([]Employee, error)
	UpdateEmployee(ctx context.Context, e Employee) (Employee, error)
	DeleteEmployee(ctx context.Context, id int64, at time.Time) error
	// EmployeeExists reports whether the id was ever assigned, deleted or not.
	EmployeeExists(ctx context.Context, id int64) (bool, error)
}

type Employee struct {
	ID         int64
	Name       string
	Department string
	Salary     decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Details renders the one-line summary shown in the menu.
func (e Employee) Details() string {
	return fmt.Sprintf("#%d %s, %s, salary %s", e.ID, e.Name, e.Department, e.Salary.StringFixed(2))
}
