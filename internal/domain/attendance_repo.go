package domain

import (
	"context"
	"strconv"
	"strings"
	"time"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusAbsent  AttendanceStatus = "ABSENT"
)

// ParseStatus accepts PRESENT or ABSENT in any letter case.
func ParseStatus(s string) (AttendanceStatus, error) {
	switch st := AttendanceStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPresent, StatusAbsent:
		return st, nil
	}
	return "", Invalid("status", "must be PRESENT or ABSENT, got "+strconv.Quote(s))
}

type AttendanceRecord struct {
	EmployeeID int64
	Date       time.Time
	Status     AttendanceStatus
	UpdatedAt  time.Time
}

type AttendanceRepo interface {
	// UpsertAttendance writes the record, replacing any record for the same
	// employee and date.
	UpsertAttendance(ctx context.Context, rec AttendanceRecord) error
	// GetAttendance returns records with from <= date <= to, ascending by date.
	GetAttendance(ctx context.Context, employeeID int64, from, to time.Time) ([]AttendanceRecord, error)
}
