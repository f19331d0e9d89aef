package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"healthbot/internal/bot"
	"healthbot/internal/config"
	"healthbot/internal/conversation"
	"healthbot/internal/food"
	"healthbot/internal/metrics"
	"healthbot/internal/repository"
	"healthbot/internal/service"
	"healthbot/internal/weather"
)

var rootCmd = &cobra.Command{
	Use:   "healthbot",
	Short: "Telegram bot tracking water, calories and workouts",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot (webhook when WEBHOOK_URL is set, long polling otherwise)",
	RunE:  runServe,
}

var registerCommandsCmd = &cobra.Command{
	Use:   "register-commands",
	Short: "Publish the command menu to Telegram",
	RunE:  runRegisterCommands,
}

func init() {
	rootCmd.AddCommand(serveCmd, registerCommandsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	metrics.Register()

	persistence, closeStorage, err := openPersistence(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	store, err := service.NewUserStore(ctx, persistence)
	if err != nil {
		return err
	}

	clock := service.NewClock(cfg.Location)
	machine := conversation.NewMachine(store, clock, weather.NewClient(cfg.OpenWeatherAPIKey), food.NewClient())
	reminders := service.NewReminderService(store, clock)

	api, err := bot.NewAPI(cfg.TelegramToken)
	if err != nil {
		return err
	}
	telegramBot := bot.New(api, machine, store, reminders)

	scheduler := service.NewSchedulerService(cfg.Location)
	jobs, err := scheduleJobs(scheduler, cfg, store, clock, telegramBot.SendDailyReports)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()
	logNextRuns(scheduler, jobs)

	log.Printf("[info] healthbot started storage=%s webhook=%t", cfg.StorageBackend, cfg.UseWebhook())
	if err := telegramBot.Run(ctx, ":"+strconv.Itoa(cfg.Port), cfg.WebhookURL); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped with error: %w", err)
	}

	store.SaveOrLog(context.Background())
	log.Println("[info] shutdown complete")
	return nil
}

func runRegisterCommands(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	api, err := bot.NewAPI(cfg.TelegramToken)
	if err != nil {
		return err
	}
	if err := bot.RegisterCommands(api); err != nil {
		return err
	}
	log.Printf("[info] registered %d commands", len(bot.Commands))
	return nil
}

// openPersistence returns the configured backend and its close function.
func openPersistence(ctx context.Context, cfg config.Config) (service.Persistence, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		client := repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, client); err != nil {
			_ = repository.Close(client)
			return nil, nil, err
		}
		closeFn := func() {
			if err := repository.Close(client); err != nil {
				log.Printf("[warn] close redis: %v", err)
			}
		}
		return repository.NewRedisSnapshotRepository(client, cfg.Redis.Key), closeFn, nil
	default:
		db, err := repository.NewDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db: %w", err)
		}
		closeFn := func() {
			if err := repository.CloseDB(db); err != nil {
				log.Printf("[warn] close db: %v", err)
			}
		}
		return repository.NewUserRepository(db), closeFn, nil
	}
}

type scheduledJob struct {
	name string
	id   cron.EntryID
}

// scheduleJobs registers the nightly rollover sweep and, when configured, the evening reports.
func scheduleJobs(scheduler *service.SchedulerService, cfg config.Config, store *service.UserStore, clock service.Clock, reports func(context.Context) error) ([]scheduledJob, error) {
	rolloverID, err := scheduler.ScheduleDaily(cfg.RolloverTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		rolled := store.RolloverAll(clock.Today())
		if rolled > 0 {
			store.SaveOrLog(jobCtx)
		}
		log.Printf("[cron] rollover sweep rolled=%d", rolled)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule rollover: %w", err)
	}
	jobs := []scheduledJob{{name: "rollover", id: rolloverID}}

	if cfg.ReportTime == "" {
		return jobs, nil
	}
	reportID, err := scheduler.ScheduleDaily(cfg.ReportTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := reports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[cron] report: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reports: %w", err)
	}
	return append(jobs, scheduledJob{name: "reports", id: reportID}), nil
}

// logNextRuns must run after the scheduler is started.
func logNextRuns(scheduler *service.SchedulerService, jobs []scheduledJob) {
	for _, job := range jobs {
		log.Printf("[cron] %s next run at %s", job.name, scheduler.Next(job.id).Format(time.RFC3339))
	}
}
