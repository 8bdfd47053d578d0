package command

import "github.com/bwmarrin/discordgo"

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Shows gateway and round-trip latency",
	}
}

// TriggersCommand defines the structure for the /triggers command.
type TriggersCommand struct{}

// Definition returns the application command definition.
func (c *TriggersCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "triggers",
		Description: "Browse the available triggers",
	}
}

// TopTriggersCommand defines the structure for the /top_triggers command.
type TopTriggersCommand struct{}

// Definition returns the application command definition.
func (c *TopTriggersCommand) Definition() *discordgo.ApplicationCommand {
	minDays := 1.0
	return &discordgo.ApplicationCommand{
		Name:        "top_triggers",
		Description: "Shows the most used triggers in this server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "days",
				Description: "How many days to look back (default 30)",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Required:    false,
				MinValue:    &minDays,
				MaxValue:    365,
			},
		},
	}
}
