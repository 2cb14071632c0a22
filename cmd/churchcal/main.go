package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ChurchCal/internal/api"
	"github.com/Kerhoff/ChurchCal/internal/auth"
	"github.com/Kerhoff/ChurchCal/internal/config"
	"github.com/Kerhoff/ChurchCal/internal/handlers"
	"github.com/Kerhoff/ChurchCal/internal/importer"
	"github.com/Kerhoff/ChurchCal/internal/service"
	"github.com/Kerhoff/ChurchCal/internal/store"
	"github.com/Kerhoff/ChurchCal/internal/telegram"
	"github.com/Kerhoff/ChurchCal/internal/xlsx"
	"github.com/Kerhoff/ChurchCal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel, cfg.LogFormat)
	logger.WithFields(l, logrus.Fields{
		"env":      cfg.Env,
		"timezone": cfg.Location.String(),
	}).Info("Starting ChurchCal...")
	if cfg.GeneratedSecret {
		l.Warn("SESSION_SECRET is not set; sessions will not survive a restart")
	}

	// Database
	db, err := config.NewDatabase(cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// Event store
	events := db.Events()
	st := store.New(events, l)
	if err := st.Load(ctx); err != nil {
		l.Fatalf("Failed to load events: %v", err)
	}

	// Spreadsheet import
	opts, err := importer.LoadOptions(cfg.ImportRulesFile)
	if err != nil {
		l.Fatalf("Failed to load import rules: %v", err)
	}
	extractor := importer.New(opts, xlsx.NewReader(l), l)

	// Service layer
	svc := service.New(l, cfg.Location, service.NewMetrics(), st, events, extractor)

	// Telegram bot
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}

		bot.RegisterCommand("start", handlers.NewStartHandler(l))
		bot.RegisterCommand("help", handlers.NewHelpHandler(l))
		bot.RegisterCommand("today", handlers.NewTodayHandler(svc, l))
		bot.RegisterCommand("date", handlers.NewDateHandler(svc, l))
		bot.RegisterCommand("month", handlers.NewMonthHandler(svc, l))

		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()

		if cfg.TelegramChatID != 0 {
			go svc.StartReminderScheduler(ctx, bot.Notify)
			go func() {
				if err := svc.StartDailyDigest(ctx, cfg.DigestSchedule, bot.Notify); err != nil {
					l.Errorf("Daily digest error: %v", err)
				}
			}()
		} else {
			l.Warn("TELEGRAM_CHAT_ID is not set; reminders are disabled")
		}
	} else {
		l.Info("TELEGRAM_TOKEN is not set; bot disabled")
	}

	// HTTP server
	authenticator := auth.New(cfg.AppPassword, cfg.SessionSecret, cfg.IsProduction(), l)
	apiServer := api.NewServer(svc, authenticator, l)
	apiServer.AllowOrigins(cfg.CORSOrigins)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	l.Info("ChurchCal started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.WithError(err).Warn("HTTP server did not shut down cleanly")
	}

	l.Info("ChurchCal stopped")
}
