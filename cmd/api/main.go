package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ai-task-orchestrator/config"
	_ "ai-task-orchestrator/docs" // Swagger docs
	runMemory "ai-task-orchestrator/internal/agentrun/repository/memory"
	runUsecase "ai-task-orchestrator/internal/agentrun/usecase"
	"ai-task-orchestrator/internal/conversation/registry"
	"ai-task-orchestrator/internal/conversation/repository/memory"
	convUsecase "ai-task-orchestrator/internal/conversation/usecase"
	"ai-task-orchestrator/internal/httpserver"
	"ai-task-orchestrator/internal/model"
	"ai-task-orchestrator/internal/notify"
	"ai-task-orchestrator/internal/scheduler"
	"ai-task-orchestrator/pkg/claude"
	"ai-task-orchestrator/pkg/gcalendar"
	"ai-task-orchestrator/pkg/log"
	"ai-task-orchestrator/pkg/telegram"
)

// @title       AI Task Orchestrator API
// @description Conversation lifecycle orchestration for AI coding assistant sessions.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting AI Task Orchestrator...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)
	logger.Infof(ctx, "Assistant binary: %s", cfg.Claude.Binary)

	// 3. Repositories
	convRepo := memory.NewConversationStore()
	taskRepo := memory.NewTaskStore()
	agentRepo := memory.NewAgentStore()
	runRepo := runMemory.NewRunStore()

	// 4. Streaming-session registry and assistant client
	reg := registry.New()
	claudeClient := claude.NewClient(cfg.Claude.Binary)

	// 5. Notifications (optional)
	var notifyQueue notify.Queue
	if cfg.Telegram.BotToken != "" && len(cfg.Telegram.ChatIDs) > 0 {
		bot := telegram.NewBot(cfg.Telegram.BotToken)
		dispatcher := notify.NewDispatcher(
			logger,
			notify.NewTelegramNotifier(bot, cfg.Telegram.ChatIDs),
			cfg.Notify.RatePerMinute,
		)
		defer dispatcher.Close()
		notifyQueue = dispatcher
		logger.Infof(ctx, "Telegram notifications enabled for %d users", len(cfg.Telegram.ChatIDs))
	} else {
		logger.Warn(ctx, "Telegram notifications disabled: TELEGRAM_BOT_TOKEN or chat ids missing")
	}

	// 6. Conversation orchestrator.
	// No realtime transport is wired here, so lifecycle events surface in
	// the logs instead.
	broadcast := func(ownerID string, ev model.Event) {
		logger.Debugf(ctx, "Event %s → %s (conversation %s)", ev.Type, ownerID, ev.ConversationID)
	}
	taskCast := func(taskID string, ev model.Event) {
		logger.Debugf(ctx, "Event %s → task %s", ev.Type, taskID)
	}

	conversationUC := convUsecase.New(
		logger,
		convUsecase.Config{
			SessionReadyTimeout:   cfg.Claude.SessionReadyTimeout,
			ContextWindow:         cfg.Claude.ContextWindow,
			DefaultPermissionMode: cfg.Claude.DefaultPermissionMode,
		},
		claudeClient,
		reg,
		convRepo,
		taskRepo,
		agentRepo,
		notifyQueue,
		broadcast,
		taskCast,
	)

	// 7. Agent-run controller, wired back into the orchestrator so session
	// completion can close runs and chain the complementary role.
	runUC := runUsecase.New(
		logger,
		runUsecase.Config{ChainDelay: cfg.Scheduler.ChainDelay},
		runRepo,
		convRepo,
		taskRepo,
		conversationUC,
	)
	conversationUC.SetRunTracker(runUC)

	// 8. Google Calendar mirror (optional)
	var calendar scheduler.CalendarClient
	if cfg.GoogleCalendar.CredentialsPath != "" {
		calendarClient, calErr := gcalendar.NewClientFromCredentialsFile(ctx, cfg.GoogleCalendar.CredentialsPath)
		if calErr != nil {
			logger.Warnf(ctx, "Google Calendar not available (optional): %v", calErr)
			logger.Warn(ctx, "→ Run `go run scripts/gcal-auth/main.go` to generate token.json")
		} else {
			calendar = calendarClient
			logger.Info(ctx, "✅ Google Calendar initialized")
		}
	}

	// 9. Cron scheduler
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(
			logger,
			scheduler.Config{
				TickInterval: cfg.Scheduler.TickInterval,
				CalendarID:   cfg.GoogleCalendar.CalendarID,
				Timezone:     cfg.Scheduler.Timezone,
			},
			agentRepo,
			conversationUC,
			calendar,
		)
		sched.Start(ctx)
		defer sched.Stop()
		logger.Infof(ctx, "Scheduler started, ticking every %s", cfg.Scheduler.TickInterval)
	} else {
		logger.Warn(ctx, "Scheduler disabled by configuration")
	}

	// 10. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:       logger,
		Port:         cfg.HTTPServer.Port,
		Mode:         cfg.HTTPServer.Mode,
		Environment:  cfg.Environment.Name,
		Conversation: conversationUC,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 11. Run
	if err := httpServer.Run(); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
