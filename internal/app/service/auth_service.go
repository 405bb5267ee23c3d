package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"payroll-bot/internal/domain"
)

// Claims identify an authenticated operator.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	Username  string
	Role      domain.Role
	ExpiresAt time.Time
}

// AuthService authenticates menu operators. The employee, attendance and
// payroll services trust callers that went through it.
type AuthService struct {
	Repo   domain.UserRepo
	Secret []byte
	TTL    time.Duration
	Log    *zap.Logger
	Now    func() time.Time
}

func NewAuthService(repo domain.UserRepo, secret string, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{Repo: repo, Secret: []byte(secret), TTL: ttl, Log: log, Now: time.Now}
}

func (s *AuthService) CreateUser(ctx context.Context, username, password string, role domain.Role) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, domain.Invalid("username", "must not be empty")
	}
	if password == "" {
		return domain.User{}, domain.Invalid("password", "must not be empty")
	}
	r, err := domain.ParseRole(string(role))
	if err != nil {
		return domain.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.Repo.InsertUser(ctx, domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         r,
		CreatedAt:    s.Now(),
	})
	if err != nil {
		return domain.User{}, err
	}
	s.Log.Info("user created", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	return u, nil
}

// EnsureUser creates the user unless the username is already taken. It
// reports whether a user was created.
func (s *AuthService) EnsureUser(ctx context.Context, username, password string, role domain.Role) (bool, error) {
	exists, err := s.Repo.UserExists(ctx, strings.TrimSpace(username))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.CreateUser(ctx, username, password, role); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Login checks the credentials and issues a signed session token. Unknown
// users and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Session{}, domain.Invalid("username", "must not be empty")
	}
	if strings.TrimSpace(password) == "" {
		return Session{}, domain.Invalid("password", "must not be empty")
	}

	u, err := s.Repo.GetUserByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		s.Log.Warn("login for unknown user", zap.String("username", username))
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.Log.Warn("login with wrong password", zap.String("username", username))
		return Session{}, domain.ErrInvalidCredentials
	}

	now := s.Now()
	expires := now.Add(s.TTL)
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return Session{}, err
	}
	s.Log.Info("user logged in", zap.String("username", u.Username))
	return Session{Token: token, Username: u.Username, Role: u.Role, ExpiresAt: expires}, nil
}

// Verify parses a session token issued by Login.
func (s *AuthService) Verify(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, domain.ErrInvalidCredentials
	}
	return claims, nil
}

// Authorize fails with ErrForbidden unless claims carry role. ADMIN passes every check.
func (s *AuthService) Authorize(claims Claims, role domain.Role) error {
	if claims.Role == domain.RoleAdmin || claims.Role == role {
		return nil
	}
	return domain.ErrForbidden
}
