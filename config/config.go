package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Conversation orchestration specifics
	Claude    ClaudeConfig
	Scheduler SchedulerConfig

	// Notification delivery
	Telegram       TelegramConfig
	GoogleCalendar GoogleCalendarConfig
	Notify         NotifyConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

// ClaudeConfig configures the assistant CLI client and the orchestrator.
type ClaudeConfig struct {
	Binary                string
	SessionReadyTimeout   time.Duration
	ContextWindow         int64
	DefaultPermissionMode string
}

// SchedulerConfig configures the cron scheduler and the chaining controller.
type SchedulerConfig struct {
	Enabled      bool
	TickInterval time.Duration
	ChainDelay   time.Duration
	Timezone     string
}

type TelegramConfig struct {
	BotToken string
	// ChatIDs maps a user id to the Telegram chat notifications go to.
	ChatIDs map[string]int64
}

type GoogleCalendarConfig struct {
	CredentialsPath string
	CalendarID      string
}

type NotifyConfig struct {
	RatePerMinute int
}

// Load loads configuration using Viper.
// Config file name: config.yaml — searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	// Assistant CLI
	cfg.Claude.Binary = viper.GetString("claude.binary")
	cfg.Claude.SessionReadyTimeout = viper.GetDuration("claude.session_ready_timeout")
	cfg.Claude.ContextWindow = viper.GetInt64("claude.context_window")
	cfg.Claude.DefaultPermissionMode = viper.GetString("claude.default_permission_mode")
	if binary := viper.GetString("claude_binary"); binary != "" {
		cfg.Claude.Binary = binary
	}

	// Scheduler & chaining
	cfg.Scheduler.Enabled = viper.GetBool("scheduler.enabled")
	cfg.Scheduler.TickInterval = viper.GetDuration("scheduler.tick_interval")
	cfg.Scheduler.ChainDelay = viper.GetDuration("scheduler.chain_delay")
	cfg.Scheduler.Timezone = viper.GetString("scheduler.timezone")

	// Telegram
	cfg.Telegram.BotToken = viper.GetString("telegram.bot_token")
	if tgToken := viper.GetString("telegram_bot_token"); tgToken != "" {
		cfg.Telegram.BotToken = tgToken
	}
	chatIDs, err := parseChatIDs(viper.GetStringMapString("telegram.chat_ids"))
	if err != nil {
		return nil, err
	}
	cfg.Telegram.ChatIDs = chatIDs

	// Google Calendar
	cfg.GoogleCalendar.CredentialsPath = viper.GetString("google_calendar.credentials_path")
	cfg.GoogleCalendar.CalendarID = viper.GetString("google_calendar.calendar_id")
	if googleCreds := viper.GetString("google_calendar_credentials"); googleCreds != "" {
		cfg.GoogleCalendar.CredentialsPath = googleCreds
	}

	// Notifications
	cfg.Notify.RatePerMinute = viper.GetInt("notify.rate_per_minute")

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)

	viper.SetDefault("claude.binary", "claude")
	viper.SetDefault("claude.session_ready_timeout", "30s")
	viper.SetDefault("claude.context_window", 160000)
	viper.SetDefault("claude.default_permission_mode", "")

	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.tick_interval", "1m")
	viper.SetDefault("scheduler.chain_delay", "1s")
	viper.SetDefault("scheduler.timezone", "UTC")

	viper.SetDefault("google_calendar.calendar_id", "primary")
	viper.SetDefault("notify.rate_per_minute", 10)
}

// parseChatIDs converts the user→chat mapping read from config into int64
// chat identifiers.
func parseChatIDs(raw map[string]string) (map[string]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]int64, len(raw))
	for user, idStr := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram chat id %q for user %s: %w", idStr, user, err)
		}
		out[user] = id
	}
	return out, nil
}
