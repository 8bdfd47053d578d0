package triggers

import (
	"strings"
	"unicode/utf8"
)

// DefaultPrefixes are the command prefixes: English, Spanish, Portuguese.
var DefaultPrefixes = []string{"!", "¡", "@"}

// MaxMessageLen is Discord's message content limit.
const MaxMessageLen = 2000

// Command is a prefixed word found in a message.
type Command struct {
	Prefix string
	Name   string
}

// ListAliases are the built-in names that open the trigger list.
var ListAliases = map[string]struct{}{
	"list":     {},
	"triggers": {},
	"commands": {},
	"help":     {},
	"cmd":      {},
	"cmds":     {},
}

// ParseCommand finds the first word of content that starts with one of
// prefixes. Matching is case-insensitive and the returned name is lowercase.
func ParseCommand(content string, prefixes []string) (Command, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Command{}, false
	}

	for _, word := range strings.Fields(strings.ToLower(content)) {
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(word, p) {
				return Command{Prefix: p, Name: strings.TrimSpace(word[len(p):])}, true
			}
		}
	}
	return Command{}, false
}

// SplitMessage breaks text into chunks of at most limit characters, cutting at
// the last newline before the limit when there is one. Newlines at the start
// of each following chunk are dropped.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLen
	}

	var chunks []string
	for utf8.RuneCountInString(text) > limit {
		r := []rune(text)
		cut := -1
		for i := limit - 1; i >= 0; i-- {
			if r[i] == '\n' {
				cut = i
				break
			}
		}
		if cut <= 0 {
			cut = limit
		}
		chunks = append(chunks, string(r[:cut]))
		text = strings.TrimLeft(string(r[cut:]), "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
