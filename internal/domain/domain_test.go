package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	v := Invalid("salary", "must be positive")
	assert.ErrorIs(t, v, ErrValidation)
	assert.NotErrorIs(t, v, ErrNotFound)
	assert.Equal(t, "validation error: salary must be positive", v.Error())

	nf := fmt.Errorf("generate: %w", NotFound("employee", int64(7)))
	assert.ErrorIs(t, nf, ErrNotFound)
	var target *NotFoundError
	require.ErrorAs(t, nf, &target)
	assert.Equal(t, int64(7), target.ID)

	cause := errors.New("disk I/O error")
	se := &StorageError{Op: "insert employee", Err: cause}
	assert.ErrorIs(t, se, ErrStorage)
	assert.ErrorIs(t, se, cause)

	assert.ErrorIs(t, &ConflictError{Entity: "user", Key: "admin"}, ErrConflict)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" present ")
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, st)

	st, err = ParseStatus("ABSENT")
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, st)

	for _, in := range []string{"", "LATE", "P", "presentt"} {
		_, err := ParseStatus(in)
		assert.ErrorIs(t, err, ErrValidation, in)
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("root")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEmployeeDetails(t *testing.T) {
	e := Employee{ID: 3, Name: "Ann", Department: "Eng", Salary: decimal.NewFromInt(2200)}
	assert.Equal(t, "#3 Ann, Eng, salary 2200.00", e.Details())
}
