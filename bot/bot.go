package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/database"
	"github.com/nsneverhax/nhxinfobot/decomp"
	"github.com/nsneverhax/nhxinfobot/github"
	"github.com/nsneverhax/nhxinfobot/grpc"
	"github.com/nsneverhax/nhxinfobot/models"
	"github.com/nsneverhax/nhxinfobot/observability"
	"github.com/nsneverhax/nhxinfobot/triggers"
	"github.com/nsneverhax/nhxinfobot/utils"
	"github.com/nsneverhax/nhxinfobot/watchdog"
)

// Command defines the interface for a slash command.
type Command interface {
	Definition() *discordgo.ApplicationCommand
}

// Bot encapsulates the bot's state.
type Bot struct {
	Session  *discordgo.Session
	Config   *models.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Commands map[string]Command

	Watchdog *watchdog.Watchdog
	Triggers *triggers.Set
	Lists    *triggers.Store
	Stats    *database.TriggerStatsDB
	Actions  *github.Checker
	Progress *decomp.Client

	db        *sql.DB
	scheduler *scheduler
	http      *observability.Server
	health    *grpc.HealthServer
}

// NewBot creates the Discord session and every component that does not need
// a live connection.
func NewBot(cfg *models.Config, logger *zap.Logger) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, errors.New("no bot token provided")
	}

	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers | discordgo.IntentsMessageContent

	b := &Bot{
		Session:  dg,
		Config:   cfg,
		Logger:   logger,
		Metrics:  observability.NewMetrics("nhxinfobot"),
		Commands: make(map[string]Command),
	}

	mod, err := utils.NewDiscordModerator(dg, cfg.Watchdog.BanStrategy, cfg.Watchdog.PurgeWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid watchdog configuration: %w", err)
	}
	b.Watchdog = watchdog.New(cfg.Watchdog, mod, logger.Named("watchdog"), b.Metrics)

	if b.Triggers, err = triggers.Load(cfg.Triggers, logger.Named("triggers")); err != nil {
		return nil, fmt.Errorf("failed to load triggers: %w", err)
	}

	if b.db, err = database.InitDB(cfg.Stats.DBPath, logger.Named("database")); err != nil {
		return nil, err
	}
	if b.Stats, err = database.NewTriggerStatsDB(b.db); err != nil {
		b.db.Close()
		return nil, err
	}

	b.Actions = NewActionsChecker(cfg.Actions, logger)
	b.Progress = decomp.NewClient(cfg.Decomp, nil)

	if cfg.HTTP.ListenAddr != "" {
		b.http = observability.NewServer(cfg.HTTP.ListenAddr, b.Metrics, b.connected, logger.Named("http"))
	}
	if cfg.GRPC.ListenAddr != "" {
		b.health = grpc.NewHealthServer(logger.Named("grpc"))
	}
	return b, nil
}

// NewActionsChecker builds the staleness checker from configuration. It needs
// no Discord session, so the CLI uses it directly.
func NewActionsChecker(cfg models.ActionsConfig, logger *zap.Logger) *github.Checker {
	client := github.NewClient(cfg.APIBaseURL, cfg.GitHubToken, cfg.RequestsPerSec, logger.Named("github"))
	return github.NewChecker(client, cfg, logger.Named("actions"))
}

func (b *Bot) connected() bool {
	return b.Session.DataReady
}

// SetConnected reports the gateway state to the gRPC health service.
func (b *Bot) SetConnected(ok bool) {
	if b.health != nil {
		b.health.SetServing(ok)
	}
}

// RegisterCommands registers the provided commands.
func (b *Bot) RegisterCommands(commands []Command) {
	for _, cmd := range commands {
		b.Commands[cmd.Definition().Name] = cmd
	}
}

// Start opens the bot's session and registers handlers.
func (b *Bot) Start(registerHandlers func(*Bot)) error {
	registerHandlers(b)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	utils.InitLogger(b.Session, b.Config.Bot.AdminChannelID, b.Logger)

	// Register slash commands
	for _, cmd := range b.Commands {
		if _, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", cmd.Definition()); err != nil {
			b.Logger.Warn("Cannot create command", zap.String("command", cmd.Definition().Name), zap.Error(err))
		}
	}

	b.startListeners()

	b.scheduler = newScheduler(b)
	if err := b.scheduler.Start(); err != nil {
		return err
	}

	utils.Info("bot", "start", fmt.Sprintf("Bot is running as %s", b.Session.State.User.Username))
	return nil
}

func (b *Bot) startListeners() {
	if b.http != nil {
		go func() {
			if err := b.http.ListenAndServe(); err != nil {
				b.Logger.Error("HTTP listener stopped", zap.Error(err))
			}
		}()
	}
	if b.health != nil {
		go func() {
			if err := b.health.ListenAndServe(b.Config.GRPC.ListenAddr); err != nil {
				b.Logger.Error("gRPC health service stopped", zap.Error(err))
			}
		}()
	}
}

// Stop gracefully closes the bot's session and releases resources.
func (b *Bot) Stop() {
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	if b.Lists != nil {
		b.Lists.Close()
	}
	if b.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := b.http.Shutdown(ctx); err != nil {
			b.Logger.Warn("HTTP shutdown failed", zap.Error(err))
		}
		cancel()
	}
	if b.health != nil {
		b.health.Stop()
	}
	if b.Session != nil {
		b.Session.Close()
	}
	if b.Stats != nil {
		b.Stats.Close()
	}
	if b.db != nil {
		b.db.Close()
	}
	b.Logger.Info("Bot stopped gracefully")
}

// Run is the main entry point for the bot application. It blocks until ctx is
// cancelled or the process receives SIGINT/SIGTERM.
func Run(ctx context.Context, cfg *models.Config, logger *zap.Logger, registerHandlers func(*Bot), commands []Command) error {
	bot, err := NewBot(cfg, logger)
	if err != nil {
		return fmt.Errorf("error initializing bot: %w", err)
	}

	bot.RegisterCommands(commands)

	if err := bot.Start(registerHandlers); err != nil {
		bot.Stop()
		return fmt.Errorf("error starting bot: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	<-ctx.Done()

	bot.Stop()
	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
