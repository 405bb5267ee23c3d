package router

import (
	"strings"

	"go.uber.org/zap"
	"gopkg.in/telebot.v3"
)

type HandlerFunc func(c telebot.Context, payload string) error

// CallbackRouter dispatches inline button callbacks by their unique key.
type CallbackRouter struct {
	handlers map[string]HandlerFunc
	log      *zap.Logger
}

func New(log *zap.Logger) *CallbackRouter {
	return &CallbackRouter{handlers: make(map[string]HandlerFunc), log: log}
}

func (r *CallbackRouter) Register(key string, h HandlerFunc) {
	r.handlers[key] = h
}

// Split turns raw callback data ("\fkey|payload") into key and payload.
func Split(raw string) (key, payload string) {
	raw = strings.TrimPrefix(raw, "\f")
	key = raw
	if i := strings.IndexByte(raw, '|'); i >= 0 {
		key = raw[:i]
		payload = raw[i+1:]
	}
	return key, payload
}

// Attach installs the router as the bot's only callback handler.
func (r *CallbackRouter) Attach(bot *telebot.Bot, m ...telebot.MiddlewareFunc) {
	bot.Handle(telebot.OnCallback, func(c telebot.Context) error {
		_, err := r.Dispatch(c)
		return err
	}, m...)
}

// Dispatch answers the callback and runs the matching handler. It reports
// whether a handler was registered for the key.
func (r *CallbackRouter) Dispatch(c telebot.Context) (bool, error) {
	key, payload := Split(c.Data())
	r.log.Debug("callback", zap.String("key", key), zap.String("payload", payload))
	_ = c.Respond()

	h, ok := r.handlers[key]
	if !ok {
		r.log.Warn("unhandled callback", zap.String("key", key))
		return false, nil
	}
	return true, h(c, payload)
}
