package models

import "time"

// Config is the full bot configuration assembled from .env, config.yaml and the
// JSON files merged from ./config.
type Config struct {
	BotToken string         `json:"bot_token" mapstructure:"bot_token"`
	Bot      BotConfig      `json:"bot" mapstructure:"bot"`
	Triggers TriggerFiles   `json:"triggers" mapstructure:"triggers"`
	Watchdog WatchdogConfig `json:"watchdog" mapstructure:"watchdog"`
	Actions  ActionsConfig  `json:"actions" mapstructure:"actions"`
	Decomp   DecompConfig   `json:"decomp" mapstructure:"decomp"`
	Stats    StatsConfig    `json:"stats" mapstructure:"stats"`
	HTTP     HTTPConfig     `json:"http" mapstructure:"http"`
	GRPC     GRPCConfig     `json:"grpc" mapstructure:"grpc"`
}

// BotConfig holds general bot behaviour.
type BotConfig struct {
	Prefixes         []string `json:"prefixes" mapstructure:"prefixes"`
	PublishChannelID string   `json:"publish_channel_id" mapstructure:"publish_channel_id"` // messages here are crossposted
	AdminChannelID   string   `json:"admin_channel_id" mapstructure:"admin_channel_id"`     // operator log embeds
	LogLevel         string   `json:"log_level" mapstructure:"log_level"`
	BaseDir          string   `json:"base_dir" mapstructure:"base_dir"` // trigger attachment files are relative to this
}

// TriggerFiles points at the three trigger tables.
type TriggerFiles struct {
	English string `json:"english" mapstructure:"english"`
	ESL     string `json:"esl" mapstructure:"esl"`
	PTBR    string `json:"ptbr" mapstructure:"ptbr"`
}

// WatchdogConfig configures the spam watchdog.
type WatchdogConfig struct {
	Enabled                 bool            `json:"enabled" mapstructure:"enabled"`
	ReportChannelID         string          `json:"report_channel_id" mapstructure:"report_channel_id"`
	Window                  time.Duration   `json:"window" mapstructure:"window"`
	MinMessages             int             `json:"min_messages" mapstructure:"min_messages"`
	MinChannels             int             `json:"min_channels" mapstructure:"min_channels"`
	RequireDuplicatePayload bool            `json:"require_duplicate_payload" mapstructure:"require_duplicate_payload"`
	MinDuplicates           int             `json:"min_duplicates" mapstructure:"min_duplicates"`
	ActionCooldown          time.Duration   `json:"action_cooldown" mapstructure:"action_cooldown"`
	UnbanDelay              time.Duration   `json:"unban_delay" mapstructure:"unban_delay"`
	CallTimeout             time.Duration   `json:"call_timeout" mapstructure:"call_timeout"`
	BanStrategy             string          `json:"ban_strategy" mapstructure:"ban_strategy"` // "seconds" or "days"
	PurgeWindow             time.Duration   `json:"purge_window" mapstructure:"purge_window"`
	ScamPitch               ScamPitchConfig `json:"scam_pitch" mapstructure:"scam_pitch"`
}

// ScamPitchConfig configures the single-message solicitation heuristic.
type ScamPitchConfig struct {
	Enabled          bool     `json:"enabled" mapstructure:"enabled"`
	MinTextLen       int      `json:"min_text_len" mapstructure:"min_text_len"`
	MinScore         int      `json:"min_score" mapstructure:"min_score"`
	NewMemberMaxDays int      `json:"new_member_max_days" mapstructure:"new_member_max_days"`
	ChannelAllowlist []string `json:"channel_allowlist" mapstructure:"channel_allowlist"` // empty means every channel
	Phrases          []string `json:"phrases" mapstructure:"phrases"`
	Keywords         []string `json:"keywords" mapstructure:"keywords"`
}

// ActionsConfig configures the GitHub Actions staleness check.
type ActionsConfig struct {
	GitHubToken     string   `json:"github_token" mapstructure:"github_token"`
	APIBaseURL      string   `json:"api_base_url" mapstructure:"api_base_url"`
	Owner           string   `json:"owner" mapstructure:"owner"`
	ExtraRepos      []string `json:"extra_repos" mapstructure:"extra_repos"`
	IgnoredRepos    []string `json:"ignored_repos" mapstructure:"ignored_repos"`
	StaleAfterDays  int      `json:"stale_after_days" mapstructure:"stale_after_days"`
	ReportChannelID string   `json:"report_channel_id" mapstructure:"report_channel_id"`
	Schedule        string   `json:"schedule" mapstructure:"schedule"`
	RunAtStartup    bool     `json:"run_at_startup" mapstructure:"run_at_startup"`
	Concurrency     int      `json:"concurrency" mapstructure:"concurrency"`
	RequestsPerSec  float64  `json:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// DecompConfig points at the decompilation progress endpoint.
type DecompConfig struct {
	URL      string `json:"url" mapstructure:"url"`
	Project  string `json:"project" mapstructure:"project"`
	Version  string `json:"version" mapstructure:"version"`
	Category string `json:"category" mapstructure:"category"`
	Title    string `json:"title" mapstructure:"title"`
	Link     string `json:"link" mapstructure:"link"`
}

// StatsConfig configures the trigger usage database.
type StatsConfig struct {
	DBPath        string `json:"db_path" mapstructure:"db_path"`
	RetentionDays int    `json:"retention_days" mapstructure:"retention_days"` // 0 keeps rows forever
}

// HTTPConfig configures the metrics/health HTTP listener. Empty address disables it.
type HTTPConfig struct {
	ListenAddr string `json:"listen_addr" mapstructure:"listen_addr"`
}

// GRPCConfig configures the gRPC health service. Empty address disables it.
type GRPCConfig struct {
	ListenAddr string `json:"listen_addr" mapstructure:"listen_addr"`
}
