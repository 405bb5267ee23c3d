package keyboards

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/telebot.v3"

	"payroll-bot/pkg/calendar"
)

const (
	PickMonth = "pick_month"
	MonthPrev = "month_prev"
	MonthNext = "month_next"
)

var ErrBadPayload = errors.New("malformed callback payload")

// BuildMonthKeyboard lists the twelve months of year for employeeID, with
// buttons to page to the neighbouring years. year is clamped to the range
// dates can be stored in, and paging stops at its ends.
func BuildMonthKeyboard(employeeID int64, year int) (string, *telebot.ReplyMarkup) {
	year = max(calendar.MinYear, min(year, calendar.MaxYear))
	markup := &telebot.ReplyMarkup{}

	rows := []telebot.Row{}
	for m := time.January; m <= time.December; m += 3 {
		row := telebot.Row{}
		for i := time.Month(0); i < 3; i++ {
			row = append(row, markup.Data(calendar.ShortName(m+i), PickMonth, pickPayload(employeeID, year, m+i)))
		}
		rows = append(rows, row)
	}

	nav := telebot.Row{}
	if year > calendar.MinYear {
		nav = append(nav, markup.Data("← "+strconv.Itoa(year-1), MonthPrev, yearPayload(employeeID, year)))
	}
	if year < calendar.MaxYear {
		nav = append(nav, markup.Data(strconv.Itoa(year+1)+" →", MonthNext, yearPayload(employeeID, year)))
	}
	rows = append(rows, nav)

	markup.Inline(rows...)
	title := fmt.Sprintf("Employee #%d, pick a month: %d", employeeID, year)
	return title, markup
}

func pickPayload(employeeID int64, year int, m time.Month) string {
	return fmt.Sprintf("%d:%04d-%02d", employeeID, year, int(m))
}

func yearPayload(employeeID int64, year int) string {
	return fmt.Sprintf("%d:%04d", employeeID, year)
}

// ParsePick decodes a pick_month payload.
func ParsePick(payload string) (employeeID int64, year int, month time.Month, err error) {
	employeeID, rest, err := splitEmployee(payload)
	if err != nil {
		return 0, 0, 0, err
	}
	ys, ms, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, 0, 0, ErrBadPayload
	}
	year, err = strconv.Atoi(ys)
	if err != nil || year <= 0 {
		return 0, 0, 0, ErrBadPayload
	}
	mi, err := strconv.Atoi(ms)
	if err != nil || mi < 1 || mi > 12 {
		return 0, 0, 0, ErrBadPayload
	}
	return employeeID, year, time.Month(mi), nil
}

// ParseYear decodes a month_prev / month_next payload.
func ParseYear(payload string) (employeeID int64, year int, err error) {
	employeeID, rest, err := splitEmployee(payload)
	if err != nil {
		return 0, 0, err
	}
	year, err = strconv.Atoi(rest)
	if err != nil || year <= 0 {
		return 0, 0, ErrBadPayload
	}
	return employeeID, year, nil
}

func splitEmployee(payload string) (int64, string, error) {
	ids, rest, ok := strings.Cut(payload, ":")
	if !ok {
		return 0, "", ErrBadPayload
	}
	id, err := strconv.ParseInt(ids, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", ErrBadPayload
	}
	return id, rest, nil
}
