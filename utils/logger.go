package utils

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

// NewLogger builds the process logger. level is a zap level name such as
// "debug" or "info"; empty means info.
func NewLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Embed sink for operator-visible events. Everything is also written to the
// zap logger so nothing is lost when the admin channel is unset.
var (
	sinkMu    sync.RWMutex
	session   *discordgo.Session
	channelID string
	fallback  = zap.NewNop()
)

// InitLogger wires the admin channel sink.
func InitLogger(s *discordgo.Session, adminChannelID string, logger *zap.Logger) {
	sinkMu.Lock()
	defer sinkMu.Unlock()

	session = s
	channelID = adminChannelID
	if logger != nil {
		fallback = logger.Named("admin")
	}
	if channelID == "" {
		fallback.Warn("bot.admin_channel_id is not set, admin channel logging is disabled")
	}
}

// Log writes an event to the zap logger and, when configured, posts it as an
// embed to the admin channel.
func Log(level, module, operation, details string) {
	sinkMu.RLock()
	s, ch, log := session, channelID, fallback
	sinkMu.RUnlock()

	fields := []zap.Field{zap.String("module", module), zap.String("operation", operation)}
	var color int
	switch level {
	case "WARN":
		color = ColorWarn
		log.Warn(details, fields...)
	case "ERROR":
		color = ColorError
		log.Error(details, fields...)
	default:
		color = ColorInfo
		log.Info(details, fields...)
	}

	if s == nil || ch == "" {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Log Level: %s", level),
		Color:     color,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Module",
				Value:  module,
				Inline: true,
			},
			{
				Name:   "Operation",
				Value:  operation,
				Inline: true,
			},
			{
				Name:  "Details",
				Value: details,
			},
		},
	}

	if _, err := s.ChannelMessageSendEmbed(ch, embed); err != nil {
		log.Warn("Error sending log message to Discord", zap.Error(err))
	}
}

// Info logs an informational message.
func Info(module, operation, details string) {
	Log("INFO", module, operation, details)
}

// Warn logs a warning message.
func Warn(module, operation, details string) {
	Log("WARN", module, operation, details)
}

// Error logs an error message.
func Error(module, operation, details string) {
	Log("ERROR", module, operation, details)
}
