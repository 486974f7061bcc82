// Package main contains the entrypoint for the PulseLog Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pulselog/pulselog/internal/bot"
	"github.com/pulselog/pulselog/internal/bot/handlers"
	"github.com/pulselog/pulselog/internal/bot/tasks"
	"github.com/pulselog/pulselog/internal/config"
	"github.com/pulselog/pulselog/internal/database"
	"github.com/pulselog/pulselog/internal/dispatch"
	"github.com/pulselog/pulselog/internal/logger"
	"github.com/pulselog/pulselog/internal/poll"
	"github.com/pulselog/pulselog/internal/session"
	"github.com/pulselog/pulselog/internal/telegram"
	"github.com/pulselog/pulselog/internal/tracker"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// sweepers, bot, scheduler), handles graceful shutdown, and returns an exit
// code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db) // Ensure DB is closed on function exit
	store := database.NewStore(db, log)

	sessions := session.NewTracker()
	trackerSvc := tracker.NewService(store, sessions, log, nil)

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Sessions: sessions,
		Tracker:  trackerSvc,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	// Retrieve bot info and store it in the config for runtime use
	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if cfg.Telegram.DropPendingUpdates {
		if _, err := tg.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			log.Warn("Failed to drop pending updates", "error", err)
		}
	}

	// Outbound delivery and the sweeps that use it need the connected bot
	// instance, so they are wired after it.
	messenger := telegram.NewMessenger(tg, log)
	sweeper := poll.NewSweeper(store, sessions, messenger, log,
		cfg.Messages.ActivityPrompt,
		poll.Window{StartHour: cfg.Poll.DefaultStartHour, EndHour: cfg.Poll.DefaultEndHour},
		cfg.Poll.SendDelay, nil)
	reporter := dispatch.NewReporter(store, messenger, log,
		cfg.Report.DefaultHour,
		cfg.Messages.NoRecords, cfg.Messages.ReportCaption,
		cfg.Report.SendDelay, nil)
	hDeps.Sweeper = sweeper

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Sweeper:  sweeper,
		Reporter: reporter,
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	if err := setBotCommands(ctx, tg); err != nil {
		log.Warn("Failed to publish bot command menu", "error", err)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx) // Run blocks until context is cancelled or an error occurs
	log.Info("Bot run loop finished. Initiating shutdown...")

	// Check if the error is significant (not just context cancellation)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}

// setBotCommands publishes the slash command menu shown by Telegram clients.
func setBotCommands(ctx context.Context, tg *tgbot.Bot) error {
	_, err := tg.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{
		Commands: []models.BotCommand{
			{Command: "start", Description: "Register and show the main menu"},
			{Command: "report", Description: "Get an activity report"},
			{Command: "set_timezone", Description: "Set your timezone"},
			{Command: "set_poll_window", Description: "Set your daily poll window"},
			{Command: "set_report_time", Description: "Set your daily report hour"},
			{Command: "newtag", Description: "Register activity tags"},
			{Command: "deltag", Description: "Delete an activity tag"},
			{Command: "tags", Description: "List your registered tags"},
			{Command: "help", Description: "Show help and the menu keyboard"},
			{Command: "hide_keyboard", Description: "Hide the menu keyboard"},
		},
	})
	return err
}
