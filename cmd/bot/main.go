package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vedasos/support-bot/internal/bot"
	"github.com/vedasos/support-bot/internal/config"
	"github.com/vedasos/support-bot/internal/locale"
	"github.com/vedasos/support-bot/internal/logger"
	"github.com/vedasos/support-bot/internal/pyrus"
	"github.com/vedasos/support-bot/internal/session"
	"github.com/vedasos/support-bot/internal/storage"

	tgbot "github.com/go-telegram/bot"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()
	log.Info("starting support bot", "log_level", cfg.LogLevel, "default_language", cfg.DefaultLanguage)

	localizer, err := locale.NewResolver(cfg.DefaultLanguage, log)
	if err != nil {
		log.Error("failed to build localizer", "error", err)
		os.Exit(1)
	}

	blobs, err := storage.NewFileBlobStore(cfg.DataDir)
	if err != nil {
		log.Error("failed to prepare data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	settings := storage.NewSettingsStore(blobs, cfg.DefaultLanguage, log)
	log.Info("settings store loaded", "dir", cfg.DataDir)

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Error("failed to enable WAL mode", "error", err)
		os.Exit(1)
	}

	queue := storage.NewDBQueue(db)
	defer queue.Close()

	if err := storage.InitSchema(queue); err != nil {
		log.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}
	log.Info("ticket archive initialized", "path", cfg.DatabasePath)

	tickets := storage.NewTicketRepository(queue)
	sessions := session.NewStore()
	dispatcher := pyrus.NewClient(cfg.PyrusAPIURL, cfg.PyrusAPIToken, cfg.PyrusFormID, cfg.DispatchTimeout, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := tgbot.New(cfg.TelegramToken)
	if err != nil {
		log.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	ticketFSM := bot.NewTicketFSM(b, sessions, settings, dispatcher, tickets, localizer, log)
	handler := bot.NewBotHandler(b, settings, localizer, ticketFSM, log)

	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypePrefix, handler.HandleStart)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/language", tgbot.MatchTypeExact, handler.HandleLanguage)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/help", tgbot.MatchTypeExact, handler.HandleHelp)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/sos", tgbot.MatchTypePrefix, handler.HandleSOS)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/SOS", tgbot.MatchTypePrefix, handler.HandleSOS)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/cancel", tgbot.MatchTypeExact, handler.HandleCancel)

	// Callback buttons, then free text for the dialog steps.
	b.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, "", tgbot.MatchTypePrefix, handler.HandleCallback)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "", tgbot.MatchTypePrefix, handler.HandleMessage)

	log.Info("command handlers registered")

	go func() {
		log.Info("starting bot polling")
		b.Start(ctx)
	}()

	log.Info("bot is running, press Ctrl+C to stop")

	<-ctx.Done()

	log.Info("shutdown signal received, stopping bot")
}
