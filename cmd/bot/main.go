package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Spok95/school-rating/internal/app"
	"github.com/Spok95/school-rating/internal/bot/handlers"
	"github.com/Spok95/school-rating/internal/config"
	"github.com/Spok95/school-rating/internal/db"
	"github.com/Spok95/school-rating/internal/jobs"
	"github.com/Spok95/school-rating/internal/logging"
	"github.com/Spok95/school-rating/internal/observability"
	"github.com/Spok95/school-rating/internal/rating"
)

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		observability.CaptureErr(err)
		logger.Error("fatal", zap.Error(err))
		flush()
		lg.Closer()
		os.Exit(1)
	}
	logger.Info("stopped")
}

func run(ctx context.Context, cfg *config.Config, lg *logging.Log) error {
	logger := lg.Base

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(ctx, database); err != nil {
		return err
	}
	if err := db.EnsureAdmins(ctx, database, cfg.AdminIDs); err != nil {
		return err
	}
	if cfg.SeedDemo {
		seeded, err := db.SeedDemo(ctx, database)
		if err != nil {
			return err
		}
		if seeded {
			logger.Info("demo data seeded")
		}
	}

	svc := rating.NewService(db.NewStore(database), lg.Component("rating"))

	app.StartHTTP(ctx, cfg.HTTPAddr, database, svc, lg.Component("http"))
	logger.Info("http started", zap.String("addr", cfg.HTTPAddr))

	runner, err := jobs.New(ctx, lg.Component("jobs"), cfg.Location)
	if err != nil {
		return err
	}
	reconcile := jobs.Reconcile(svc, lg.Component("reconcile"))
	if err := runner.Every(cfg.ReconcileEvery, jobs.ReconcileJob, reconcile); err != nil {
		return err
	}
	if err := runner.Cron(cfg.ReconcileCron, jobs.ReconcileJob+"_nightly", reconcile); err != nil {
		return err
	}

	var bot *tgbotapi.BotAPI
	if cfg.BotToken != "" {
		bot, err = tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			return err
		}
		logger.Info("bot authorized", zap.String("username", bot.Self.UserName))
		if err := runner.Cron(app.SchoolYearCron, "school_year_report",
			app.SchoolYearReport(bot, svc, cfg.AdminIDs, cfg.Location)); err != nil {
			return err
		}
	} else {
		logger.Warn("BOT_TOKEN is empty, telegram bot disabled")
	}

	runner.Start()
	defer func() { _ = runner.Stop() }()

	if bot == nil {
		<-ctx.Done()
		return nil
	}

	users := db.Users{DB: database}
	cmds := handlers.NewCommands(svc, users, lg.Component("bot"), cfg.Location)
	disp := app.NewDispatcher(bot, users.ByTelegramID, cmds, lg.Component("dispatcher"))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
	}()

	disp.Run(ctx, updates)
	return nil
}
