package middleware

import (
	"sync"

	"go.uber.org/zap"
	"gopkg.in/telebot.v3"

	"payroll-bot/internal/app/service"
	"payroll-bot/internal/domain"
)

const claimsKey = "claims"

const (
	msgLoginFirst     = "Please /login <user> <password> first."
	msgSessionExpired = "Your session has expired, please /login again."
)

// Authenticator checks session tokens and roles.
type Authenticator interface {
	Verify(token string) (service.Claims, error)
	Authorize(claims service.Claims, role domain.Role) error
}

// Sessions maps a chat to the token of the operator logged in there.
type Sessions struct {
	mu     sync.RWMutex
	tokens map[int64]string
}

func NewSessions() *Sessions {
	return &Sessions{tokens: make(map[int64]string)}
}

func (s *Sessions) Put(chatID int64, token string) {
	s.mu.Lock()
	s.tokens[chatID] = token
	s.mu.Unlock()
}

func (s *Sessions) Token(chatID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[chatID]
	return t, ok
}

// Drop forgets the chat's session and reports whether there was one.
func (s *Sessions) Drop(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[chatID]
	delete(s.tokens, chatID)
	return ok
}

// RequireSession lets the update through only for chats with a valid token
// and stores the verified claims on the context.
func RequireSession(auth Authenticator, sessions *Sessions, log *zap.Logger) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			chatID := c.Chat().ID
			token, ok := sessions.Token(chatID)
			if !ok {
				return c.Send(msgLoginFirst)
			}
			claims, err := auth.Verify(token)
			if err != nil {
				sessions.Drop(chatID)
				log.Info("session rejected", zap.Int64("chat_id", chatID), zap.Error(err))
				return c.Send(msgSessionExpired)
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// RequireRole must run after RequireSession.
func RequireRole(auth Authenticator, role domain.Role, log *zap.Logger) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return c.Send(msgLoginFirst)
			}
			if err := auth.Authorize(claims, role); err != nil {
				log.Warn("forbidden",
					zap.String("username", claims.Subject),
					zap.String("role", string(claims.Role)),
					zap.String("required", string(role)),
				)
				return c.Send(err.Error())
			}
			return next(c)
		}
	}
}

func ClaimsFrom(c telebot.Context) (service.Claims, bool) {
	claims, ok := c.Get(claimsKey).(service.Claims)
	return claims, ok
}
