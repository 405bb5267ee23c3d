package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payroll-bot/internal/domain"
)

func TestEmployeeAddThenGet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	seen := map[int64]bool{}
	inputs := []struct{ name, dept, salary string }{
		{"Ann", "Eng", "2200"},
		{"Bob", "Ops", "1999.99"},
		{"Cleo", "Finance", "0.01"},
	}
	for _, in := range inputs {
		added, err := env.Employees.Add(ctx, in.name, in.dept, dec(in.salary))
		require.NoError(t, err)
		assert.False(t, seen[added.ID], "id %d reused", added.ID)
		seen[added.ID] = true

		got, err := env.Employees.Get(ctx, added.ID)
		require.NoError(t, err)
		assert.Equal(t, added.ID, got.ID)
		assert.Equal(t, in.name, got.Name)
		assert.Equal(t, in.dept, got.Department)
		assert.True(t, dec(in.salary).Equal(got.Salary))
	}
}

func TestEmployeeAddValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	cases := map[string]struct {
		name, dept, salary, field string
	}{
		"empty name":      {"", "Eng", "100", "name"},
		"blank name":      {"   ", "Eng", "100", "name"},
		"empty dept":      {"Ann", "", "100", "department"},
		"zero salary":     {"Ann", "Eng", "0", "salary"},
		"negative salary": {"Ann", "Eng", "-5", "salary"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.Employees.Add(ctx, c.name, c.dept, dec(c.salary))
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, c.field, verr.Field)
		})
	}

	n := 0
	for _, err := range env.Employees.ListAll(ctx) {
		require.NoError(t, err)
		n++
	}
	assert.Zero(t, n, "rejected employees must not be stored")
}

func TestEmployeeUnknownID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.Employees.Get(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.Employees.Update(ctx, 404, "Ann", "Eng", dec("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, env.Employees.Delete(ctx, 404), domain.ErrNotFound)
}

func TestEmployeeUpdateReplacesAllFields(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	e, err := env.Employees.Add(ctx, "Ann", "Eng", dec("2200"))
	require.NoError(t, err)

	_, err = env.Employees.Update(ctx, e.ID, "Ann Lee", "Research", dec("3100.25"))
	require.NoError(t, err)

	got, err := env.Employees.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, "Ann Lee", got.Name)
	assert.Equal(t, "Research", got.Department)
	assert.True(t, dec("3100.25").Equal(got.Salary))

	_, err = env.Employees.Update(ctx, e.ID, "Ann", "", dec("1"))
	assert.ErrorIs(t, err, domain.ErrValidation)
	got, err = env.Employees.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Research", got.Department, "failed update must not touch the record")
}

func TestEmployeeDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	e, err := env.Employees.Add(ctx, "Ann", "Eng", dec("2200"))
	require.NoError(t, err)
	require.NoError(t, env.Employees.Delete(ctx, e.ID))

	_, err = env.Employees.Get(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.Employees.Update(ctx, e.ID, "Ann", "Eng", dec("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, env.Employees.Delete(ctx, e.ID), domain.ErrNotFound)

	ok, err := env.Employees.Exists(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEmployeeListAllIsLazyAndRestartable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	total := listPageSize + 5
	var ids []int64
	for i := 0; i < total; i++ {
		e, err := env.Employees.Add(ctx, "E", "Eng", dec("1"))
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	require.NoError(t, env.Employees.Delete(ctx, ids[3]))

	seq := env.Employees.ListAll(ctx)
	collect := func() []int64 {
		var got []int64
		for e, err := range seq {
			require.NoError(t, err)
			got = append(got, e.ID)
		}
		return got
	}

	first := collect()
	assert.Len(t, first, total-1)
	assert.NotContains(t, first, ids[3])
	assert.IsIncreasing(t, first)
	assert.Equal(t, first, collect(), "a second range starts over")

	var early []int64
	for e, err := range seq {
		require.NoError(t, err)
		early = append(early, e.ID)
		if len(early) == 2 {
			break
		}
	}
	assert.Equal(t, first[:2], early)
}
