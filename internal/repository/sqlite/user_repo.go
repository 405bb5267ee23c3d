package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"payroll-bot/internal/domain"
)

type SqliteUserRepo struct {
	db *sql.DB
}

func NewSqliteUserRepo(db *sql.DB) *SqliteUserRepo {
	return &SqliteUserRepo{db: db}
}

func (r *SqliteUserRepo) InsertUser(ctx context.Context, u domain.User) (domain.User, error) {
	err := withTx(ctx, r.db, "insert user", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)`,
			u.Username, u.PasswordHash, string(u.Role), formatTime(u.CreatedAt),
		)
		if isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "user", Key: u.Username}
		}
		if err != nil {
			return err
		}
		u.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *SqliteUserRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var (
		u         domain.User
		role      string
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, domain.NotFound("user", username)
	}
	if err != nil {
		return u, storageErr("get user", err)
	}
	u.Role = domain.Role(role)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return u, storageErr("get user", err)
	}
	return u, nil
}

func (r *SqliteUserRepo) UserExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`, username).Scan(&exists)
	return exists, storageErr("user exists", err)
}
