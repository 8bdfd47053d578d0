package triggers

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	TriggerColumns = 3
	AliasColumns   = 2

	listTitle  = "Available Triggers"
	zeroWidth  = "\u200b"
	colorBlue  = 0x3498db
	customIDNS = "triggers"
)

// Button actions carried in component custom IDs.
const (
	ActionNext     = "next"
	ActionPrev     = "prev"
	ActionAliases  = "aliases"
	ActionTriggers = "triggers"
)

// PerColumn returns how many entries go in one embed column for a list of
// total entries.
func PerColumn(total int) int {
	switch {
	case total <= 15:
		return max(3, (total+TriggerColumns-1)/TriggerColumns)
	case total <= 30:
		return 5
	case total <= 60:
		return 6
	default:
		return 9
	}
}

// Paginator is the view state of one trigger list message.
type Paginator struct {
	triggers    []string
	aliases     []Alias
	showAliases bool
	page        int
}

func NewPaginator(triggers []string, aliases []Alias) *Paginator {
	return &Paginator{triggers: triggers, aliases: aliases}
}

func (p *Paginator) ShowingAliases() bool { return p.showAliases }
func (p *Paginator) Page() int            { return p.page }

func (p *Paginator) total() int {
	if p.showAliases {
		return len(p.aliases)
	}
	return len(p.triggers)
}

func (p *Paginator) columns() int {
	if p.showAliases {
		return AliasColumns
	}
	return TriggerColumns
}

func (p *Paginator) pageSize() int {
	return PerColumn(p.total()) * p.columns()
}

// Pages is the page count for the current mode, at least one.
func (p *Paginator) Pages() int {
	return max(1, (p.total()+p.pageSize()-1)/p.pageSize())
}

// HasNext reports whether the next page exists and has entries.
func (p *Paginator) HasNext() bool {
	return p.page < p.Pages()-1 && (p.page+1)*p.pageSize() < p.total()
}

// Apply performs a button action. Unknown actions and out-of-range moves are
// ignored; it reports whether the view changed.
func (p *Paginator) Apply(action string) bool {
	switch action {
	case ActionNext:
		if !p.HasNext() {
			return false
		}
		p.page++
	case ActionPrev:
		if p.page == 0 {
			return false
		}
		p.page--
	case ActionAliases:
		p.showAliases = true
		p.page = 0
	case ActionTriggers:
		p.showAliases = false
		p.page = 0
	default:
		return false
	}
	return true
}

// Embed renders the current page.
func (p *Paginator) Embed() *discordgo.MessageEmbed {
	title := listTitle
	name := "Triggers"
	if p.showAliases {
		title += " - Aliases"
		name = "Aliases"
	}

	per := PerColumn(p.total())
	start := min(p.page*p.pageSize(), p.total())
	end := min(start+p.pageSize(), p.total())

	fields := make([]*discordgo.MessageEmbedField, 0, p.columns())
	for col := 0; col < p.columns(); col++ {
		lo := min(start+col*per, end)
		hi := min(lo+per, end)

		value := zeroWidth
		if hi > lo {
			if p.showAliases {
				lines := make([]string, 0, hi-lo)
				for _, a := range p.aliases[lo:hi] {
					lines = append(lines, "**"+a.Trigger+"**\n"+strings.Join(a.Aliases, ", "))
				}
				value = strings.Join(lines, "\n")
			} else {
				value = strings.Join(p.triggers[lo:hi], "\n")
			}
		}

		fieldName := zeroWidth
		if col == 0 {
			fieldName = name
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: fieldName, Value: value, Inline: true})
	}

	return &discordgo.MessageEmbed{Title: title, Color: colorBlue, Fields: fields}
}

// Components renders the button row. disabled greys out every button, used
// once the session has expired.
func (p *Paginator) Components(sessionID string, disabled bool) []discordgo.MessageComponent {
	toggle := discordgo.Button{
		Label:    "Show Aliases",
		Style:    discordgo.SecondaryButton,
		CustomID: CustomID(sessionID, ActionAliases),
		Disabled: disabled,
	}
	if p.showAliases {
		toggle.Label = "Show Triggers"
		toggle.CustomID = CustomID(sessionID, ActionTriggers)
	}

	prev := discordgo.Button{
		Label:    "Previous",
		Style:    discordgo.PrimaryButton,
		CustomID: CustomID(sessionID, ActionPrev),
		Disabled: disabled,
	}
	if p.page == 0 {
		prev.Style = discordgo.SecondaryButton
		prev.Disabled = true
	}

	next := discordgo.Button{
		Label:    "Next",
		Style:    discordgo.PrimaryButton,
		CustomID: CustomID(sessionID, ActionNext),
		Disabled: disabled,
	}
	if !p.HasNext() {
		next.Style = discordgo.SecondaryButton
		next.Disabled = true
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{toggle, prev, next}},
	}
}

// CustomID builds a component custom ID for a list session.
func CustomID(sessionID, action string) string {
	return customIDNS + ":" + sessionID + ":" + action
}

// ParseCustomID splits a custom ID made by CustomID.
func ParseCustomID(id string) (sessionID, action string, ok bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != customIDNS {
		return "", "", false
	}
	return parts[1], parts[2], true
}
