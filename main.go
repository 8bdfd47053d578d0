package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/bot"
	"github.com/nsneverhax/nhxinfobot/command"
	"github.com/nsneverhax/nhxinfobot/config"
	"github.com/nsneverhax/nhxinfobot/decomp"
	"github.com/nsneverhax/nhxinfobot/github"
	"github.com/nsneverhax/nhxinfobot/handlers"
	"github.com/nsneverhax/nhxinfobot/models"
	"github.com/nsneverhax/nhxinfobot/utils"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "nhxinfobot",
		Usage: "Discord info bot with trigger responses and a spam watchdog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Aliases: []string{"c"},
				Value:   ".",
				Usage:   "Directory holding .env, config.yaml and config/*.json",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Overrides bot.log_level",
			},
		},
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Connect to Discord and serve until interrupted",
				Action: runBot,
			},
			{
				Name:   "check-actions",
				Usage:  "Run the GitHub Actions staleness check once and print the result",
				Action: checkActions,
			},
			{
				Name:   "progress",
				Usage:  "Print the decompilation progress summary",
				Action: printProgress,
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

// setup loads configuration and builds the logger shared by every command.
func setup(c *cli.Command) (*models.Config, *zap.Logger, error) {
	bootstrap, err := utils.NewLogger(c.String("log-level"))
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadConfig(c.String("config-dir"), bootstrap)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Bot.LogLevel
	if c.String("log-level") != "" {
		level = c.String("log-level")
	}
	logger, err := utils.NewLogger(level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func runBot(ctx context.Context, c *cli.Command) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	commands := make([]bot.Command, 0, len(command.AllCommands))
	for _, cmd := range command.AllCommands {
		commands = append(commands, cmd)
	}
	return bot.Run(ctx, cfg, logger, handlers.Register, commands)
}

func checkActions(ctx context.Context, c *cli.Command) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	checker := bot.NewActionsChecker(cfg.Actions, logger)
	stale, err := checker.Check(ctx)
	if err != nil {
		return err
	}

	embed := github.ReportEmbed(stale, checker.StaleAfterDays())
	if embed == nil {
		fmt.Printf("No stale repos (threshold %d days).\n", checker.StaleAfterDays())
		return nil
	}
	printEmbed(embed)
	return nil
}

func printEmbed(embed *discordgo.MessageEmbed) {
	fmt.Println(embed.Title)
	fmt.Println(embed.Description)
	for _, f := range embed.Fields {
		if f.Name != "\u200b" {
			fmt.Println(f.Name)
		}
		fmt.Println(f.Value)
	}
}

func printProgress(ctx context.Context, c *cli.Command) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	summary, err := decomp.NewClient(cfg.Decomp, nil).Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Println(summary)
	return nil
}
