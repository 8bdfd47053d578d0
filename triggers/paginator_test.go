package triggers_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsneverhax/nhxinfobot/triggers"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("t%02d", i)
	}
	return out
}

func aliasGroups(n int) []triggers.Alias {
	out := make([]triggers.Alias, n)
	for i := range out {
		out[i] = triggers.Alias{Trigger: fmt.Sprintf("a%02d", i), Aliases: []string{"x", "y"}}
	}
	return out
}

func TestPerColumn(t *testing.T) {
	t.Parallel()

	tests := map[int]int{
		0:   3,
		1:   3,
		9:   3,
		10:  4,
		15:  5,
		16:  5,
		30:  5,
		31:  6,
		60:  6,
		61:  9,
		500: 9,
	}
	for total, want := range tests {
		assert.Equal(t, want, triggers.PerColumn(total), "total %d", total)
	}
}

func buttons(t *testing.T, p *triggers.Paginator, disabled bool) []discordgo.Button {
	t.Helper()
	comps := p.Components("abcd1234", disabled)
	require.Len(t, comps, 1)
	row, ok := comps[0].(discordgo.ActionsRow)
	require.True(t, ok)

	out := make([]discordgo.Button, 0, len(row.Components))
	for _, c := range row.Components {
		b, ok := c.(discordgo.Button)
		require.True(t, ok)
		out = append(out, b)
	}
	require.Len(t, out, 3)
	return out
}

func TestPaginatorPaging(t *testing.T) {
	t.Parallel()

	// 40 triggers: 6 per column, 18 per page, 3 pages.
	p := triggers.NewPaginator(names(40), nil)
	assert.Equal(t, 3, p.Pages())

	embed := p.Embed()
	assert.Equal(t, "Available Triggers", embed.Title)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "Triggers", embed.Fields[0].Name)
	assert.Equal(t, "\u200b", embed.Fields[1].Name)
	assert.Len(t, strings.Split(embed.Fields[0].Value, "\n"), 6)
	assert.True(t, embed.Fields[0].Inline)

	b := buttons(t, p, false)
	assert.Equal(t, "Show Aliases", b[0].Label)
	assert.True(t, b[1].Disabled, "previous on first page")
	assert.False(t, b[2].Disabled)

	assert.False(t, p.Apply(triggers.ActionPrev))
	assert.True(t, p.Apply(triggers.ActionNext))
	assert.True(t, p.Apply(triggers.ActionNext))
	assert.Equal(t, 2, p.Page())
	assert.False(t, p.HasNext())
	assert.False(t, p.Apply(triggers.ActionNext))

	// Last page holds t36..t39 in the first column only.
	embed = p.Embed()
	assert.Equal(t, "t36\nt37\nt38\nt39", embed.Fields[0].Value)
	assert.Equal(t, "\u200b", embed.Fields[1].Value)
	assert.Equal(t, "\u200b", embed.Fields[2].Value)

	b = buttons(t, p, false)
	assert.False(t, b[1].Disabled)
	assert.True(t, b[2].Disabled, "next on last page")
}

func TestPaginatorSinglePage(t *testing.T) {
	t.Parallel()

	p := triggers.NewPaginator(names(7), nil)
	assert.Equal(t, 1, p.Pages())
	embed := p.Embed()
	assert.Equal(t, "t00\nt01\nt02", embed.Fields[0].Value)
	assert.Equal(t, "t03\nt04\nt05", embed.Fields[1].Value)
	assert.Equal(t, "t06", embed.Fields[2].Value)

	b := buttons(t, p, false)
	assert.True(t, b[1].Disabled)
	assert.True(t, b[2].Disabled)
}

func TestPaginatorEmpty(t *testing.T) {
	t.Parallel()

	p := triggers.NewPaginator(nil, nil)
	assert.Equal(t, 1, p.Pages())
	for _, f := range p.Embed().Fields {
		assert.Equal(t, "\u200b", f.Value)
	}
}

func TestPaginatorAliases(t *testing.T) {
	t.Parallel()

	p := triggers.NewPaginator(names(40), aliasGroups(8))
	require.True(t, p.Apply(triggers.ActionNext))

	require.True(t, p.Apply(triggers.ActionAliases))
	assert.True(t, p.ShowingAliases())
	assert.Zero(t, p.Page(), "switching view resets the page")
	assert.Equal(t, 2, p.Pages(), "3 per column, 2 columns")

	embed := p.Embed()
	assert.Equal(t, "Available Triggers - Aliases", embed.Title)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "Aliases", embed.Fields[0].Name)
	assert.Equal(t, "**a00**\nx, y\n**a01**\nx, y\n**a02**\nx, y", embed.Fields[0].Value)

	b := buttons(t, p, false)
	assert.Equal(t, "Show Triggers", b[0].Label)
	assert.Equal(t, triggers.CustomID("abcd1234", triggers.ActionTriggers), b[0].CustomID)

	require.True(t, p.Apply(triggers.ActionTriggers))
	assert.False(t, p.ShowingAliases())
	assert.Equal(t, 3, p.Pages())
}

func TestPaginatorDisabledComponents(t *testing.T) {
	t.Parallel()

	p := triggers.NewPaginator(names(40), nil)
	for _, b := range buttons(t, p, true) {
		assert.True(t, b.Disabled, b.Label)
	}
}

func TestCustomID(t *testing.T) {
	t.Parallel()

	id, action, ok := triggers.ParseCustomID(triggers.CustomID("abcd1234", triggers.ActionNext))
	require.True(t, ok)
	assert.Equal(t, "abcd1234", id)
	assert.Equal(t, triggers.ActionNext, action)

	for _, bad := range []string{"", "triggers", "other:abcd:next", "triggers:a:b:c"} {
		_, _, ok := triggers.ParseCustomID(bad)
		assert.False(t, ok, bad)
	}
}
