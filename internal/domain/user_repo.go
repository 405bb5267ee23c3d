package domain

import (
	"context"
	"strconv"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleClerk Role = "CLERK"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleClerk:
		return r, nil
	}
	return "", Invalid("role", "must be ADMIN or CLERK, got "+strconv.Quote(s))
}

// User is an operator of the menu, not an employee record.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

type UserRepo interface {
	InsertUser(ctx context.Context, u User) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	UserExists(ctx context.Context, username string) (bool, error)
}
