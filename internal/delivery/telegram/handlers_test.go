package telegram

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/telebot.v3"

	"payroll-bot/internal/app/service"
	"payroll-bot/internal/delivery/telegram/middleware"
	"payroll-bot/internal/domain"
	"payroll-bot/internal/repository/sqlite"
	"payroll-bot/pkg/workerpool"
)

type fakeCtx struct {
	telebot.Context
	msg     *telebot.Message
	sent    []string
	deleted bool
}

func cmd(chatID int64, text string) *fakeCtx {
	return &fakeCtx{msg: &telebot.Message{Payload: text, Chat: &telebot.Chat{ID: chatID}}}
}

func (f *fakeCtx) Message() *telebot.Message { return f.msg }
func (f *fakeCtx) Chat() *telebot.Chat { return f.msg.Chat }
func (f *fakeCtx) Delete() error {
	f.deleted = true
	return nil
}
func (f *fakeCtx) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, fmt.Sprint(what))
	return nil
}

func (f *fakeCtx) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pool := workerpool.NewWorkerPool(2, 4)
	t.Cleanup(pool.Close)

	log := zaptest.NewLogger(t)
	locks := service.NewLocker()
	employees := service.NewEmployeeService(sqlite.NewSqliteEmployeeRepo(db), locks, log)
	attendance := service.NewAttendanceService(sqlite.NewSqliteAttendanceRepo(db), employees, locks, log)
	payroll := service.NewPayrollService(sqlite.NewSqlitePayrollRepo(db), employees, attendance, locks,
		service.NewAsyncService(pool), log, service.DefaultWorkingDays)
	auth := service.NewAuthService(sqlite.NewSqliteUserRepo(db), "test-secret", time.Hour, log)

	return &Handler{
		Employees:  employees,
		Attendance: attendance,
		Payroll:    payroll,
		Auth:       auth,
		Sessions:   middleware.NewSessions(),
		Log:        log,
		Now:        func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) },
	}
}

func TestSplitFields(t *testing.T) {
	parts, ok := splitFields(" Ann Lee | Eng |2200 ", 3)
	require.True(t, ok)
	assert.Equal(t, []string{"Ann Lee", "Eng", "2200"}, parts)

	_, ok = splitFields("Ann | Eng", 3)
	assert.False(t, ok)
	_, ok = splitFields("a|b|c|d", 3)
	assert.False(t, ok)
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, s := range []string{"", "0", "-1", "x", "1.5"} {
		_, err := parseID(s)
		assert.ErrorIs(t, err, domain.ErrValidation, s)
	}
}

func TestSendChunked(t *testing.T) {
	c := cmd(1, "")
	line := strings.Repeat("x", 1000)
	require.NoError(t, sendChunked(c, "header", []string{line, line, line, line, line}))
	require.Len(t, c.sent, 2)
	for _, m := range c.sent {
		assert.LessOrEqual(t, len(m), maxMessageLen)
	}
	assert.True(t, strings.HasPrefix(c.sent[0], "header\n"))
}

func TestLoginStoresSession(t *testing.T) {
	h := newTestHandler(t)
	_, err := h.Auth.CreateUser(context.Background(), "clerk", "pw", domain.RoleClerk)
	require.NoError(t, err)

	c := cmd(5, "clerk wrong")
	require.NoError(t, h.handleLogin(c))
	assert.True(t, c.deleted)
	assert.Equal(t, domain.ErrInvalidCredentials.Error(), c.last())
	_, ok := h.Sessions.Token(5)
	assert.False(t, ok)

	c = cmd(5, "clerk pw")
	require.NoError(t, h.handleLogin(c))
	assert.Contains(t, c.last(), "Logged in as clerk")
	token, ok := h.Sessions.Token(5)
	require.True(t, ok)
	_, err = h.Auth.Verify(token)
	assert.NoError(t, err)

	require.NoError(t, h.handleLogout(cmd(5, "")))
	_, ok = h.Sessions.Token(5)
	assert.False(t, ok)
}

func TestEmployeeCommands(t *testing.T) {
	h := newTestHandler(t)

	c := cmd(1, "Ann | Eng | 2200")
	require.NoError(t, h.handleAdd(c))
	assert.Equal(t, "Added #1 Ann, Eng, salary 2200.00", c.last())

	c = cmd(1, "Ann | Eng")
	require.NoError(t, h.handleAdd(c))
	assert.True(t, strings.HasPrefix(c.last(), "Usage:"))

	c = cmd(1, "Ann | Eng | lots")
	require.NoError(t, h.handleAdd(c))
	assert.Contains(t, c.last(), "salary")

	c = cmd(1, "1 | Ann Lee | Ops | 3000.5")
	require.NoError(t, h.handleUpdate(c))
	assert.Equal(t, "Updated #1 Ann Lee, Ops, salary 3000.50", c.last())

	c = cmd(1, "1")
	require.NoError(t, h.handleGet(c))
	assert.Equal(t, "#1 Ann Lee, Ops, salary 3000.50", c.last())

	c = cmd(1, "")
	require.NoError(t, h.handleList(c))
	assert.Equal(t, "Employees (1):\n#1 Ann Lee, Ops, salary 3000.50", c.last())

	c = cmd(1, "1")
	require.NoError(t, h.handleDelete(c))
	assert.Equal(t, "Employee #1 deleted.", c.last())

	c = cmd(1, "1")
	require.NoError(t, h.handleGet(c))
	assert.Contains(t, c.last(), "not found")

	c = cmd(1, "")
	require.NoError(t, h.handleList(c))
	assert.Equal(t, "No employees.", c.last())
}

func TestAttendanceAndPayrollCommands(t *testing.T) {
	h := newTestHandler(t)
	require.NoError(t, h.handleAdd(cmd(1, "Ann | Eng | 2200")))

	c := cmd(1, "1 present")
	require.NoError(t, h.handleMark(c))
	assert.Equal(t, "#1 PRESENT on 2024-03-15.", c.last())

	for d := 1; d <= 10; d++ {
		c = cmd(1, fmt.Sprintf("1 PRESENT 2024-03-%02d", d))
		require.NoError(t, h.handleMark(c))
	}
	c = cmd(1, "1 LATE 2024-03-20")
	require.NoError(t, h.handleMark(c))
	assert.Contains(t, c.last(), "status")

	c = cmd(1, "1 PRESENT 20-03-2024")
	require.NoError(t, h.handleMark(c))
	assert.Contains(t, c.last(), "date")

	c = cmd(1, "1")
	require.NoError(t, h.handleLogs(c))
	assert.Contains(t, c.last(), "2024-03-01 PRESENT")
	assert.Contains(t, c.last(), "2024-03-15 PRESENT")

	c = cmd(1, "1 March 2024")
	require.NoError(t, h.handlePayroll(c))
	assert.Contains(t, c.last(), "Days present: 11 of 22")
	assert.Contains(t, c.last(), "Net: 1100.00")

	c = cmd(1, "1 March twenty")
	require.NoError(t, h.handlePayroll(c))
	assert.Contains(t, c.last(), "year")

	c = cmd(1, "1")
	require.NoError(t, h.handleHistory(c))
	assert.Contains(t, c.last(), "March 2024: net 1100.00 (11/22 days)")

	c = cmd(1, "March 2024")
	require.NoError(t, h.handlePayrollAll(c))
	assert.True(t, strings.HasPrefix(c.last(), "Payroll March 2024: 1 generated, 0 failed."))

	c = cmd(1, "99")
	require.NoError(t, h.handleHistory(c))
	assert.Contains(t, c.last(), "not found")
}
