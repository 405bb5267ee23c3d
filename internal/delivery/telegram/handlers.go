package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/telebot.v3"

	"payroll-bot/internal/app/service"
	"payroll-bot/internal/delivery/telegram/flows"
	"payroll-bot/internal/delivery/telegram/middleware"
	"payroll-bot/internal/delivery/telegram/router"
	"payroll-bot/internal/domain"
	"payroll-bot/pkg/calendar"
)

// maxMessageLen keeps replies under Telegram's 4096 character limit.
const maxMessageLen = 3500

const helpText = `Payroll bot commands:
/login <user> <password>
/logout
/add <name> | <department> | <salary>
/get <id>
/update <id> | <name> | <department> | <salary>
/delete <id> (admin)
/list
/mark <id> <PRESENT|ABSENT> [YYYY-MM-DD]
/logs <id>
/payroll <id> [<month> <year>]
/history <id>
/payroll_all <month> <year> (admin)`

type Handler struct {
	Bot        *telebot.Bot
	Employees  *service.EmployeeService
	Attendance *service.AttendanceService
	Payroll    *service.PayrollService
	Auth       *service.AuthService
	Sessions   *middleware.Sessions
	Router     *router.CallbackRouter
	Log        *zap.Logger
	Now        func() time.Time
}

func (h *Handler) Register() {
	h.Bot.Handle("/start", h.handleStart)
	h.Bot.Handle("/login", h.handleLogin)

	session := middleware.RequireSession(h.Auth, h.Sessions, h.Log)
	admin := middleware.RequireRole(h.Auth, domain.RoleAdmin, h.Log)

	g := h.Bot.Group()
	g.Use(session)
	g.Handle("/logout", h.handleLogout)
	g.Handle("/add", h.handleAdd)
	g.Handle("/get", h.handleGet)
	g.Handle("/update", h.handleUpdate)
	g.Handle("/delete", h.handleDelete, admin)
	g.Handle("/list", h.handleList)
	g.Handle("/mark", h.handleMark)
	g.Handle("/logs", h.handleLogs)
	g.Handle("/payroll", h.handlePayroll)
	g.Handle("/history", h.handleHistory)
	g.Handle("/payroll_all", h.handlePayrollAll, admin)

	flows.RegisterPayroll(h.Router, h.Payroll, h.Log)
	h.Router.Attach(h.Bot, session)
}

func (h *Handler) requestCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), flows.RequestTimeout)
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// fail logs err and shows its message to the chat.
func (h *Handler) fail(c telebot.Context, cmd string, err error) error {
	fields := []zap.Field{zap.String("command", cmd), zap.Int64("chat_id", c.Chat().ID), zap.Error(err)}
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidCredentials):
		h.Log.Warn("command rejected", fields...)
	default:
		h.Log.Error("command failed", fields...)
	}
	return c.Send(err.Error())
}

func payload(c telebot.Context) string {
	if m := c.Message(); m != nil {
		return strings.TrimSpace(m.Payload)
	}
	return ""
}

// splitFields splits a "|" separated payload into exactly n trimmed parts.
func splitFields(s string, n int) ([]string, bool) {
	parts := strings.Split(s, "|")
	if len(parts) != n {
		return nil, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("id", "must be a positive integer")
	}
	return id, nil
}

func parseSalary(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, domain.Invalid("salary", "must be a number")
	}
	return d, nil
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.Invalid("year", "must be an integer")
	}
	return y, nil
}

// sendChunked sends lines as few messages as fit the length limit.
func sendChunked(c telebot.Context, header string, lines []string) error {
	var b strings.Builder
	b.WriteString(header)
	for _, l := range lines {
		if b.Len()+len(l)+1 > maxMessageLen {
			if err := c.Send(b.String()); err != nil {
				return err
			}
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l)
	}
	return c.Send(b.String())
}

func (h *Handler) handleStart(c telebot.Context) error {
	return c.Send(helpText)
}

func (h *Handler) handleLogin(c telebot.Context) error {
	// The message carries a password; remove it from the chat either way.
	_ = c.Delete()

	args := strings.Fields(payload(c))
	if len(args) != 2 {
		return c.Send("Usage: /login <user> <password>")
	}
	ctx, cancel := h.requestCtx()
	defer cancel()

	sess, err := h.Auth.Login(ctx, args[0], args[1])
	if err != nil {
		return h.fail(c, "login", err)
	}
	h.Sessions.Put(c.Chat().ID, sess.Token)
	return c.Send(fmt.Sprintf("Logged in as %s (%s) until %s.",
		sess.Username, sess.Role, sess.ExpiresAt.UTC().Format("2006-01-02 15:04 MST")))
}

func (h *Handler) handleLogout(c telebot.Context) error {
	h.Sessions.Drop(c.Chat().ID)
	return c.Send("Logged out.")
}

func (h *Handler) handleAdd(c telebot.Context) error {
	parts, ok := splitFields(payload(c), 3)
	if !ok {
		return c.Send("Usage: /add <name> | <department> | <salary>")
	}
	salary, err := parseSalary(parts[2])
	if err != nil {
		return h.fail(c, "add", err)
	}
	ctx, cancel := h.requestCtx()
	defer cancel()

	e, err := h.Employees.Add(ctx, parts[0], parts[1], salary)
	if err != nil {
		return h.fail(c, "add", err)
	}
	return c.Send("Added " + e.Details())
}

func (h *Handler) handleGet(c telebot.Context) error {
	id, err := parseID(payload(c))
	if err != nil {
		return h.fail(c, "get", err)
	}
	ctx, cancel := h.requestCtx()
	defer cancel()

	e, err := h.Employees.Get(ctx, id)
	if err != nil {
		return h.fail(c, "get", err)
	}
	return c.Send(e.Details())
}

func (h *Handler) handleUpdate(c telebot.Context) error {
	parts, ok := splitFields(payload(c), 4)
	if !ok {
		return c.Send("Usage: /update <id> | <name> | <department> | <salary>")
	}
	id, err := parseID(parts[0])
	if err != nil {
		return h.fail(c, "update", err)
	}
	salary, err := parseSalary(parts[3])
	if err != nil {
		return h.fail(c, "update", err)
	}
	ctx, cancel := h.requestCtx()
	defer cancel()

	e, err := h.Employees.Update(ctx, id, parts[1], parts[2], salary)
	if err != nil {
		return h.fail(c, "update", err)
	}
	return c.Send("Updated " + e.Details())
}

func (h *Handler) handleDelete(c telebot.Context) error {
	id, err := parseID(payload(c))
	if err != nil {
		return h.fail(c, "delete", err)
	}
	ctx, cancel := h.requestCtx()
	defer cancel()

	if err := h.Employees.Delete(ctx, id); err != nil {
		return h.fail(c, "delete", err)
	}
	return c.Send(fmt.Sprintf("Employee #%d deleted.", id))
}

func (h *Handler) handleList(c telebot.Context) error {
	ctx, cancel := h.requestCtx()
	defer cancel()

	var lines []string
	for e, err := range h.Employees.ListAll(ctx) {
		if err != nil {
			return h.fail(c, "list", err)
		}
		lines = append(lines, e.Details())
	}
	if len(lines) == 0 {
		return c.Send("No employees.")
	}
	return sendChunked(c, fmt.Sprintf("Employees (%d):", len(lines)), lines)
}

func (h *Handler) handleMark(c telebot.Context) error {
	args := strings.Fields(payload(c))
	if len(args) != 2 && len(args) != 3 {
		return c.Send("Usage: /mark <id> <PRESENT|ABSENT> [YYYY-MM-DD]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return h.fail(c, "mark", err)
	}
	day := calendar.Day(h.now())
	if len(args) == 3 {
		if day, err = calendar.ParseDay(args[2]); err != nil {
			return h.fail(c, "mark", domain.Invalid("date", "must look like "+calendar.DateLayout))
		}
	}
	ctx, cancel := h.requestCtx()
	defer cancel()

	rec, err := h.Attendance.Track(ctx, id, day, args[1])
	if err != nil {
		return h.fail(c, "mark", err)
	}
	return c.Send(fmt.Sprintf("#%d %s on %s.", rec.EmployeeID, rec.Status, rec.Date.Format(calendar.DateLayout)))
}

func (h *Handler) handleLogs(c telebot.Context) error {
	id, err := parseID(payload(c))
	if err != nil {
		return h.fail(c, "logs", err)
	}
	ctx, cancel := h.requestCtx()
	defer cancel()

	logs, err := h.Attendance.LogsFor(ctx, id)
	if err != nil {
		return h.fail(c, "logs", err)
	}
	if len(logs) == 0 {
		return c.Send(fmt.Sprintf("No attendance recorded for #%d.", id))
	}
	lines := make([]string, len(logs))
	for i, r := range logs {
		lines[i] = r.Date.Format(calendar.DateLayout) + " " + string(r.Status)
	}
	return sendChunked(c, fmt.Sprintf("Attendance of #%d:", id), lines)
}

func (h *Handler) handlePayroll(c telebot.Context) error {
	args := strings.Fields(payload(c))
	if len(args) != 1 && len(args) != 3 {
		return c.Send("Usage: /payroll <id> [<month> <year>]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return h.fail(c, "payroll", err)
	}
	if len(args) == 1 {
		return flows.ShowMonthPicker(c, id, h.now())
	}
	year, err := parseYear(args[2])
	if err != nil {
		return h.fail(c, "payroll", err)
	}
	ctx, cancel := h.requestCtx()
	defer cancel()

	report, err := h.Payroll.Generate(ctx, id, args[1], year)
	if err != nil {
		return h.fail(c, "payroll", err)
	}
	return c.Send(flows.FormatReport(report))
}

func (h *Handler) handleHistory(c telebot.Context) error {
	id, err := parseID(payload(c))
	if err != nil {
		return h.fail(c, "history", err)
	}
	ctx, cancel := h.requestCtx()
	defer cancel()

	reports, err := h.Payroll.HistoryFor(ctx, id)
	if err != nil {
		return h.fail(c, "history", err)
	}
	if len(reports) == 0 {
		return c.Send(fmt.Sprintf("No payroll reports for #%d.", id))
	}
	lines := make([]string, len(reports))
	for i, r := range reports {
		lines[i] = flows.FormatHistoryLine(r)
	}
	return sendChunked(c, fmt.Sprintf("Payroll history of #%d:", id), lines)
}

func (h *Handler) handlePayrollAll(c telebot.Context) error {
	args := strings.Fields(payload(c))
	if len(args) != 2 {
		return c.Send("Usage: /payroll_all <month> <year>")
	}
	year, err := parseYear(args[1])
	if err != nil {
		return h.fail(c, "payroll_all", err)
	}
	ctx, cancel := h.requestCtx()
	defer cancel()

	results, err := h.Payroll.GenerateForAll(ctx, args[0], year)
	if err != nil {
		return h.fail(c, "payroll_all", err)
	}
	if len(results) == 0 {
		return c.Send("No employees.")
	}
	failed := 0
	lines := make([]string, len(results))
	for i, r := range results {
		if r.Err != nil {
			failed++
			lines[i] = fmt.Sprintf("#%d failed: %v", r.EmployeeID, r.Err)
			continue
		}
		lines[i] = fmt.Sprintf("#%d net %s (%d/%d days)",
			r.EmployeeID, r.Report.NetSalary.StringFixed(2), r.Report.DaysPresent, r.Report.WorkingDays)
	}
	header := fmt.Sprintf("Payroll %s %d: %d generated, %d failed.", args[0], year, len(results)-failed, failed)
	return sendChunked(c, header, lines)
}
