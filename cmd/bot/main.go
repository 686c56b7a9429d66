package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nmalginov/timetable_bot/internal/app"
	"github.com/nmalginov/timetable_bot/internal/config"
	"github.com/nmalginov/timetable_bot/internal/controller"
	"github.com/nmalginov/timetable_bot/internal/scraper"
	"github.com/nmalginov/timetable_bot/internal/service"
	"github.com/nmalginov/timetable_bot/internal/state"
	"github.com/nmalginov/timetable_bot/internal/telegram"
)

const fetchTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting timetable bot",
		zap.String("environment", cfg.Environment),
		zap.String("schedule_base_url", cfg.ScheduleBaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	store := state.NewStore()
	scheduleScraper := scraper.New(cfg.ScheduleBaseURL, fetchTimeout, logger)
	scheduleService := service.NewScheduleService(scheduleScraper, cfg.EnglishTeacher, logger)
	transport := telegram.NewClient(b, logger)
	syncService := service.NewSyncService(store, scheduleService, transport, logger)

	botController := controller.NewBotController(b, syncService, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	reconciler := app.NewReconciler(store, syncService, cfg.SweepConcurrency, logger)

	// Цикл обновлений бота и ежедневная сверка живут как две связанные
	// задачи: остановка одной (сигнал, фатальная ошибка) гасит вторую.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		botController.Start(gctx)
		return gctx.Err()
	})
	g.Go(func() error {
		return reconciler.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Bot stopped")
}
