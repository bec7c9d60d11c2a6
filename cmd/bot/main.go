package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/slotswap_bot/internal/app"
	"github.com/Freeeeeet/slotswap_bot/internal/config"
	"github.com/Freeeeeet/slotswap_bot/internal/controller"
	"github.com/Freeeeeet/slotswap_bot/internal/repository"
	"github.com/Freeeeeet/slotswap_bot/internal/service"
	"github.com/Freeeeeet/slotswap_bot/migrations"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting slot swap bot",
		zap.String("environment", cfg.Environment),
		zap.Int("token_length", len(cfg.TelegramToken)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("Bot stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Подключаемся к базе
	poolCfg, err := pgxpool.ParseConfig(cfg.DBDSN)
	if err != nil {
		return err
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.DBTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	err = pool.Ping(pingCtx)
	cancel()
	if err != nil {
		return err
	}
	logger.Info("✅ Connected to database")

	// Миграции
	migrator, err := app.NewMigrator(pool, migrations.FS, cfg.MigrationsDir, logger)
	if err != nil {
		return err
	}
	err = migrator.Run(ctx)
	migrator.Close()
	if err != nil {
		return err
	}

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	slotRepo := repository.NewSlotRepository(pool)
	swapRepo := repository.NewSwapRequestRepository(pool)

	// Сервисы
	userService := service.NewUserService(userRepo, logger)
	slotService := service.NewSlotService(slotRepo, logger)
	swapService := service.NewSwapService(slotRepo, swapRepo, userRepo, cfg.SwapConfig(), logger)

	// Фоновая сверка резервов
	auditor := app.NewAuditor(slotRepo, swapRepo, cfg.AuditInterval, logger.Named("auditor"))
	auditor.Start(ctx)
	defer auditor.Stop()

	// Telegram
	b, err := bot.New(cfg.TelegramToken,
		bot.WithErrorsHandler(func(err error) {
			logger.Error("Telegram API error", zap.Error(err))
		}),
	)
	if err != nil {
		return err
	}

	botController := controller.NewBotController(b, userService, slotService, swapService, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		// без меню команд бот работает
		logger.Warn("Bot commands were not set", zap.Error(err))
	}

	botController.Start(ctx)
	return nil
}
