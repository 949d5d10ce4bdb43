package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tg_meal_planner_bot/internal/api"
	"tg_meal_planner_bot/internal/auth"
	"tg_meal_planner_bot/internal/config"
	"tg_meal_planner_bot/internal/logging"
	"tg_meal_planner_bot/internal/store"
	"tg_meal_planner_bot/internal/telegram"
)

const (
	mongoConnectTimeout     = 10 * time.Second
	mongoIndexTimeout       = 5 * time.Second
	mongoDisconnectTimeout  = 5 * time.Second
	apiShutdownTimeout      = 10 * time.Second
	telegramShutdownTimeout = 10 * time.Second
)

func main() {
	configOnly := flag.Bool("config-only", false, "load and print configuration then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("configuration error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(cfg)
	if err != nil {
		logging.Error("logger setup error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "logger setup error: %v\n", err)
		os.Exit(1)
	}

	if *configOnly {
		logging.Info("configuration check", logging.Fields{"event": "config_only"})
		fmt.Println("configuration check: ok")
		fmt.Println(config.FormatRedacted(cfg))
		return
	}

	logger.WithFields(logging.Fields{
		"event":    "startup",
		"mongo_db": cfg.MongoDB,
	}).Info("configuration loaded")

	connectCtx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	mongoManager, err := store.NewManager(connectCtx, cfg)
	cancel()
	if err != nil {
		logger.WithError(err).Error("mongo connection error")
		fmt.Fprintf(os.Stderr, "mongo connection error: %v\n", err)
		os.Exit(1)
	}

	logger.WithField("event", "mongo_connect").Info("connected to mongo")

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), mongoIndexTimeout)
	if err := mongoManager.EnsureBaseIndexes(indexCtx); err != nil {
		cancelIndexes()
		logger.WithError(err).Error("mongo index setup error")
		fmt.Fprintf(os.Stderr, "mongo index setup error: %v\n", err)
		os.Exit(1)
	}
	cancelIndexes()

	logger.WithField("event", "mongo_indexes").Info("ensured base mongo indexes")

	users := store.NewUserRepository(mongoManager.Users())
	settings := store.NewSettingsRepository(mongoManager.UserSettings())
	dishes := store.NewDishRepository(mongoManager.Dishes())
	ingredients := store.NewIngredientRepository(mongoManager.Ingredients())
	menus := store.NewMenuRepository(mongoManager.WeekMenus())
	shopping := store.NewShoppingRepository(mongoManager.ShoppingItems())
	commonItems := store.NewCommonItemRepository(mongoManager.CommonItems())
	stats := store.NewStatsProvider(mongoManager.Users(), mongoManager.Dishes())

	resolver := auth.NewResolver(users, settings, logger)

	tgClient, err := telegram.NewClient(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("telegram client setup error")
		fmt.Fprintf(os.Stderr, "telegram client setup error: %v\n", err)
		os.Exit(1)
	}

	logger.WithField("event", "telegram_ready").Info("telegram client initialized")

	apiServer, err := api.NewServer(api.Deps{
		Config:      cfg,
		Logger:      logger,
		Resolver:    resolver,
		Users:       users,
		Settings:    settings,
		Dishes:      dishes,
		Ingredients: ingredients,
		Menus:       menus,
		Shopping:    shopping,
		CommonItems: commonItems,
		Notifier:    tgClient.Notifier(),
		Pinger:      mongoManager,
		Stats:       stats,
	})
	if err != nil {
		logger.WithError(err).Error("api server setup error")
		fmt.Fprintf(os.Stderr, "api server setup error: %v\n", err)
		os.Exit(1)
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiDone := make(chan struct{})
	go func() {
		if err := apiServer.ListenAndServe(); err != nil {
			logger.WithError(err).Error("api server error")
		}
		close(apiDone)
	}()

	telegramCtx, cancelTelegram := context.WithCancel(context.Background())
	tgDone := make(chan struct{})

	go func() {
		tgClient.Start(telegramCtx)
		close(tgDone)
	}()

	select {
	case <-signalCtx.Done():
		logger.WithField("event", "shutdown_signal").Info("received termination signal, stopping services")
	case <-tgDone:
		logger.WithField("event", "telegram_stopped_early").Warn("telegram client stopped before shutdown signal")
	case <-apiDone:
		logger.WithField("event", "api_stopped_early").Warn("api server stopped before shutdown signal")
	}

	apiCtx, cancelAPI := context.WithTimeout(context.Background(), apiShutdownTimeout)
	if err := apiServer.Shutdown(apiCtx); err != nil {
		logger.WithError(err).Error("api server shutdown error")
	}
	cancelAPI()

	cancelTelegram()

	waitCtx, cancelWait := context.WithTimeout(context.Background(), telegramShutdownTimeout)
	select {
	case <-tgDone:
	case <-waitCtx.Done():
		logger.WithField("event", "telegram_shutdown_timeout").Warn("timed out waiting for telegram client to stop")
	}
	cancelWait()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
	if err := mongoManager.Close(shutdownCtx); err != nil {
		logger.WithError(err).Error("mongo disconnect error")
	} else {
		logger.WithField("event", "mongo_disconnect").Info("mongo client disconnected")
	}
	cancelShutdown()

	logger.WithField("event", "shutdown_complete").Info("shutdown complete")
}
