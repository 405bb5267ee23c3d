package flows

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/telebot.v3"

	"payroll-bot/internal/delivery/telegram/keyboards"
	"payroll-bot/internal/delivery/telegram/middleware"
	"payroll-bot/internal/delivery/telegram/router"
	"payroll-bot/internal/domain"
)

// RequestTimeout bounds a single chat request against the services.
const RequestTimeout = 30 * time.Second

// PayrollGenerator is the payroll operation behind the month picker.
type PayrollGenerator interface {
	Generate(ctx context.Context, employeeID int64, month string, year int) (domain.PayrollReport, error)
}

// ShowMonthPicker opens the month picker for employeeID on the current year.
func ShowMonthPicker(c telebot.Context, employeeID int64, now time.Time) error {
	title, markup := keyboards.BuildMonthKeyboard(employeeID, now.Year())
	return c.Send(title, markup)
}

// RegisterPayroll wires the month picker callbacks to payroll generation.
func RegisterPayroll(r *router.CallbackRouter, payroll PayrollGenerator, log *zap.Logger) {
	r.Register(keyboards.MonthPrev, func(c telebot.Context, payload string) error {
		id, y, err := keyboards.ParseYear(payload)
		if err != nil {
			return c.Send(err.Error())
		}
		title, markup := keyboards.BuildMonthKeyboard(id, y-1)
		return middleware.EditOrSend(c, title, markup)
	})

	r.Register(keyboards.MonthNext, func(c telebot.Context, payload string) error {
		id, y, err := keyboards.ParseYear(payload)
		if err != nil {
			return c.Send(err.Error())
		}
		title, markup := keyboards.BuildMonthKeyboard(id, y+1)
		return middleware.EditOrSend(c, title, markup)
	})

	r.Register(keyboards.PickMonth, func(c telebot.Context, payload string) error {
		id, y, m, err := keyboards.ParsePick(payload)
		if err != nil {
			return c.Send(err.Error())
		}
		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()

		report, err := payroll.Generate(ctx, id, strconv.Itoa(int(m)), y)
		if err != nil {
			log.Warn("payroll from picker failed", zap.Int64("employee_id", id), zap.Error(err))
			return middleware.EditOrSend(c, err.Error(), nil)
		}
		return middleware.EditOrSend(c, FormatReport(report), nil)
	})
}

// FormatReport renders a report for the chat.
func FormatReport(r domain.PayrollReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Payroll #%d, %s %d\n", r.EmployeeID, r.Month, r.Year)
	fmt.Fprintf(&b, "Days present: %d of %d\n", r.DaysPresent, r.WorkingDays)
	fmt.Fprintf(&b, "Gross: %s\n", r.GrossSalary.StringFixed(2))
	fmt.Fprintf(&b, "Net: %s\n", r.NetSalary.StringFixed(2))
	fmt.Fprintf(&b, "Report %s, generated %s", r.ID, r.GeneratedAt.UTC().Format(time.RFC3339))
	return b.String()
}

// FormatHistoryLine renders one report as a single history line.
func FormatHistoryLine(r domain.PayrollReport) string {
	return fmt.Sprintf("%s %d: net %s (%d/%d days), %s",
		r.Month, r.Year, r.NetSalary.StringFixed(2), r.DaysPresent, r.WorkingDays,
		r.GeneratedAt.UTC().Format("2006-01-02 15:04"))
}
