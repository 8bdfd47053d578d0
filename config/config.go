package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/models"
)

// LoadConfig loads configuration from several sources rooted at dir:
// 1. .env (environment variables)
// 2. config.yaml (base configuration)
// 3. config/watchdog.json (spam watchdog, merged)
// 4. config/actions.json (Actions staleness check, merged)
// Environment variables override file values for every known key.
func LoadConfig(dir string, logger *zap.Logger) (*models.Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil {
		logger.Debug("No .env file found, skipping")
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to parse config.yaml: %w", err)
		}
		logger.Info("No config.yaml found, using defaults and environment")
	}

	for _, name := range []string{"watchdog.json", "actions.json"} {
		if err := mergeOptional(v, filepath.Join(dir, "config", name), logger); err != nil {
			return nil, err
		}
	}

	var cfg models.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeOptional(v *viper.Viper, path string, logger *zap.Logger) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Debug("Optional config file not found, skipping", zap.String("path", path))
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to merge %s: %w", path, err)
	}
	return nil
}

// Validate reports every invalid setting at once. The bot token is checked by
// the bot itself since the one-shot CLI commands do not need it.
func Validate(cfg *models.Config) error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(len(cfg.Bot.Prefixes) > 0, "bot.prefixes must not be empty")

	w := cfg.Watchdog
	check(!w.Enabled || w.ReportChannelID != "",
		"watchdog.report_channel_id must be set while the watchdog is enabled")
	check(w.Window > 0, "watchdog.window must be positive, got %s", w.Window)
	check(w.MinMessages >= 1, "watchdog.min_messages must be at least 1, got %d", w.MinMessages)
	check(w.MinChannels >= 1, "watchdog.min_channels must be at least 1, got %d", w.MinChannels)
	check(!w.RequireDuplicatePayload || w.MinDuplicates >= 1,
		"watchdog.min_duplicates must be at least 1 when duplicates are required, got %d", w.MinDuplicates)
	check(w.ActionCooldown >= 0, "watchdog.action_cooldown must not be negative")
	check(w.UnbanDelay >= 0, "watchdog.unban_delay must not be negative")
	check(w.CallTimeout > 0, "watchdog.call_timeout must be positive, got %s", w.CallTimeout)
	check(w.PurgeWindow >= 0, "watchdog.purge_window must not be negative")
	check(slices.Contains([]string{"seconds", "days"}, w.BanStrategy),
		"watchdog.ban_strategy must be \"seconds\" or \"days\", got %q", w.BanStrategy)
	check(!w.ScamPitch.Enabled || w.ScamPitch.MinScore > 0,
		"watchdog.scam_pitch.min_score must be positive, got %d", w.ScamPitch.MinScore)
	check(w.ScamPitch.NewMemberMaxDays >= 0, "watchdog.scam_pitch.new_member_max_days must not be negative")

	a := cfg.Actions
	check(a.StaleAfterDays > 0, "actions.stale_after_days must be positive, got %d", a.StaleAfterDays)
	check(a.Concurrency > 0, "actions.concurrency must be positive, got %d", a.Concurrency)
	check(a.RequestsPerSec >= 0, "actions.requests_per_sec must not be negative")
	check(cfg.Stats.DBPath != "", "stats.db_path must not be empty")
	check(cfg.Stats.RetentionDays >= 0, "stats.retention_days must not be negative")
	if a.Schedule != "" {
		if _, err := cron.ParseStandard(a.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("actions.schedule %q: %w", a.Schedule, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot_token", "")

	v.SetDefault("bot.prefixes", []string{"!", "¡", "@"})
	v.SetDefault("bot.publish_channel_id", "")
	v.SetDefault("bot.admin_channel_id", "")
	v.SetDefault("bot.log_level", "info")
	v.SetDefault("bot.base_dir", ".")

	v.SetDefault("triggers.english", "triggers.json")
	v.SetDefault("triggers.esl", "triggers_esl.json")
	v.SetDefault("triggers.ptbr", "triggers_ptbr.json")

	v.SetDefault("watchdog.enabled", true)
	v.SetDefault("watchdog.report_channel_id", "1328184167850053793")
	v.SetDefault("watchdog.window", 9*time.Second)
	v.SetDefault("watchdog.min_messages", 3)
	v.SetDefault("watchdog.min_channels", 3)
	v.SetDefault("watchdog.require_duplicate_payload", true)
	v.SetDefault("watchdog.min_duplicates", 3)
	v.SetDefault("watchdog.action_cooldown", 60*time.Second)
	v.SetDefault("watchdog.unban_delay", time.Second)
	v.SetDefault("watchdog.call_timeout", 15*time.Second)
	v.SetDefault("watchdog.ban_strategy", "seconds")
	v.SetDefault("watchdog.purge_window", time.Hour)

	v.SetDefault("watchdog.scam_pitch.enabled", true)
	v.SetDefault("watchdog.scam_pitch.min_text_len", 280)
	v.SetDefault("watchdog.scam_pitch.min_score", 7)
	v.SetDefault("watchdog.scam_pitch.new_member_max_days", 14)
	v.SetDefault("watchdog.scam_pitch.channel_allowlist", []string{})
	v.SetDefault("watchdog.scam_pitch.phrases", []string{
		"open to projects",
		"open to roles",
		"looking for paid",
		"long-term contracts",
		"full-time roles",
		"hiring",
		"dm me",
		"d*m me",
		"message me",
		"reach out",
	})
	v.SetDefault("watchdog.scam_pitch.keywords", []string{
		"blockchain", "web3", "defi", "nft", "dao", "solidity", "rust", "evm",
		"solana", "ai", "llm", "rag", "autonomous", "agents",
		"workflow automation", "multimodal", "saas",
	})

	v.SetDefault("actions.github_token", "")
	v.SetDefault("actions.api_base_url", "https://api.github.com")
	v.SetDefault("actions.owner", "nsneverhax")
	v.SetDefault("actions.extra_repos", []string{})
	v.SetDefault("actions.ignored_repos", []string{})
	v.SetDefault("actions.stale_after_days", 89)
	v.SetDefault("actions.report_channel_id", "")
	v.SetDefault("actions.schedule", "@every 24h")
	v.SetDefault("actions.run_at_startup", true)
	v.SetDefault("actions.concurrency", 4)
	v.SetDefault("actions.requests_per_sec", 5.0)

	v.SetDefault("decomp.url", "https://progress.decomp.club/data/rb3/SZBE69_B8/dol/")
	v.SetDefault("decomp.project", "rb3")
	v.SetDefault("decomp.version", "SZBE69_B8")
	v.SetDefault("decomp.category", "dol")
	v.SetDefault("decomp.title", "Rock Band 3 Decompilation")
	v.SetDefault("decomp.link", "https://rb3dx.milohax.org/decomp")

	v.SetDefault("stats.db_path", "data/stats.db")
	v.SetDefault("stats.retention_days", 365)
	v.SetDefault("http.listen_addr", "")
	v.SetDefault("grpc.listen_addr", "")
}
