package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PayrollReport is immutable once stored.
type PayrollReport struct {
	ID          string
	EmployeeID  int64
	Month       time.Month
	Year        int
	DaysPresent int
	WorkingDays int
	GrossSalary decimal.Decimal
	NetSalary   decimal.Decimal
	GeneratedAt time.Time
}

type PayrollRepo interface {
	InsertReport(ctx context.Context, r PayrollReport) error
	// GetReports returns every report of the employee ordered by (year, month)
	// and then insertion order.
	GetReports(ctx context.Context, employeeID int64) ([]PayrollReport, error)
	// LatestReport returns the most recently inserted report for the period.
	LatestReport(ctx context.Context, employeeID int64, month time.Month, year int) (PayrollReport, error)
}
