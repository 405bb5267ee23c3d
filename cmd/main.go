package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/telebot.v3"

	"payroll-bot/config"
	"payroll-bot/internal/app/service"
	"payroll-bot/internal/delivery/telegram"
	"payroll-bot/internal/delivery/telegram/middleware"
	"payroll-bot/internal/delivery/telegram/router"
	"payroll-bot/internal/domain"
	"payroll-bot/internal/repository/sqlite"
	"payroll-bot/pkg/workerpool"
)

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = lvl
	return cfg.Build()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("logger", zap.Error(err))
	}
	defer log.Sync()

	log.Info("starting payroll bot", zap.String("db", cfg.DBPath), zap.Int("working_days", cfg.WorkingDays))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	pool := workerpool.NewWorkerPool(cfg.Workers, cfg.QueueSize)
	defer pool.Close()

	locks := service.NewLocker()
	employees := service.NewEmployeeService(sqlite.NewSqliteEmployeeRepo(db), locks, log.Named("employees"))
	attendance := service.NewAttendanceService(sqlite.NewSqliteAttendanceRepo(db), employees, locks, log.Named("attendance"))
	payroll := service.NewPayrollService(sqlite.NewSqlitePayrollRepo(db), employees, attendance, locks,
		service.NewAsyncService(pool), log.Named("payroll"), cfg.WorkingDays)
	auth := service.NewAuthService(sqlite.NewSqliteUserRepo(db), cfg.JWTSecret, cfg.SessionTTL, log.Named("auth"))

	if cfg.AdminPassword != "" {
		created, err := auth.EnsureUser(ctx, cfg.AdminUsername, cfg.AdminPassword, domain.RoleAdmin)
		if err != nil {
			log.Fatal("seed admin", zap.Error(err))
		}
		if created {
			log.Info("admin user created", zap.String("username", cfg.AdminUsername))
		}
	} else if ok, err := auth.Repo.UserExists(ctx, cfg.AdminUsername); err != nil || !ok {
		log.Fatal("ADMIN_PASSWORD is required until the admin user exists",
			zap.String("username", cfg.AdminUsername), zap.Error(err))
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			log.Error("telegram update failed", zap.Error(err))
		},
	})
	if err != nil {
		log.Fatal("start bot", zap.Error(err))
	}

	handler := &telegram.Handler{
		Bot:        bot,
		Employees:  employees,
		Attendance: attendance,
		Payroll:    payroll,
		Auth:       auth,
		Sessions:   middleware.NewSessions(),
		Router:     router.New(log.Named("callbacks")),
		Log:        log.Named("telegram"),
		Now:        time.Now,
	}
	handler.Register()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		bot.Stop()
	}()

	log.Info("bot started")
	bot.Start()
}
