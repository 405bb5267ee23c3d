package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"payroll-bot/internal/domain"
)

type SqliteEmployeeRepo struct {
	db *sql.DB
}

func NewSqliteEmployeeRepo(db *sql.DB) *SqliteEmployeeRepo {
	return &SqliteEmployeeRepo{db: db}
}

const employeeColumns = `id, name, department, salary, created_at, updated_at`

func scanEmployee(row rowScanner) (domain.Employee, error) {
	var (
		e                    domain.Employee
		createdAt, updatedAt string
		err                  error
	)
	if err = row.Scan(&e.ID, &e.Name, &e.Department, &e.Salary, &createdAt, &updatedAt); err != nil {
		return e, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return e, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return e, err
	}
	return e, nil
}

func getLiveEmployee(ctx context.Context, q queryRower, id int64) (domain.Employee, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ? AND deleted_at IS NULL`, id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return e, domain.NotFound("employee", id)
	}
	return e, err
}

func (r *SqliteEmployeeRepo) InsertEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	err := withTx(ctx, r.db, "insert employee", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO employees (name, department, salary, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			e.Name, e.Department, e.Salary, formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
		)
		if err != nil {
			return err
		}
		e.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return domain.Employee{}, err
	}
	return e, nil
}

func (r *SqliteEmployeeRepo) GetEmployeeByID(ctx context.Context, id int64) (domain.Employee, error) {
	e, err := getLiveEmployee(ctx, r.db, id)
	return e, storageErr("get employee", err)
}

func (r *SqliteEmployeeRepo) ListEmployees(ctx context.Context, afterID int64, limit int) ([]domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE deleted_at IS NULL AND id > ? ORDER BY id LIMIT ?`,
		afterID, limit,
	)
	if err != nil {
		return nil, storageErr("list employees", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, storageErr("list employees", err)
		}
		employees = append(employees, e)
	}
	return employees, storageErr("list employees", rows.Err())
}

func (r *SqliteEmployeeRepo) UpdateEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	var updated domain.Employee
	err := withTx(ctx, r.db, "update employee", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE employees SET name = ?, department = ?, salary = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
			e.Name, e.Department, e.Salary, formatTime(e.UpdatedAt), e.ID,
		)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return domain.NotFound("employee", e.ID)
		}
		updated, err = getLiveEmployee(ctx, tx, e.ID)
		return err
	})
	return updated, err
}

func (r *SqliteEmployeeRepo) DeleteEmployee(ctx context.Context, id int64, at time.Time) error {
	return withTx(ctx, r.db, "delete employee", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE employees SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
			formatTime(at), id,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NotFound("employee", id)
		}
		return nil
	})
}

func (r *SqliteEmployeeRepo) EmployeeExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = ?)`, id).Scan(&exists)
	return exists, storageErr("employee exists", err)
}
