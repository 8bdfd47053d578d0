package triggers

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/models"
)

// Lang names the table a response came from.
type Lang string

const (
	English Lang = "en"
	ESL     Lang = "esl"
	PTBR    Lang = "ptbr"
)

// LinkID refers to an English response id. The files carry it either as a
// string or as a bare number.
type LinkID string

func (l *LinkID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := sonic.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = LinkID(s)
		return nil
	}
	*l = LinkID(b)
	return nil
}

// Response is one canned reply.
type Response struct {
	Triggers []string `json:"triggers"`
	Text     string   `json:"text,omitempty"`
	Files    []string `json:"files,omitempty"`
	Link     LinkID   `json:"link,omitempty"`
}

// Table maps response id to response, as stored on disk.
type Table map[string]*Response

// LoadTable reads one trigger file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trigger file %s: %w", path, err)
	}
	var t Table
	if err := sonic.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse trigger file %s: %w", path, err)
	}
	return t, nil
}

// ids returns the table's ids in a stable order: numeric ids numerically,
// then everything else lexically.
func (t Table) ids() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}

// Set is the lookup index built from the three tables.
type Set struct {
	english  map[string]*Response
	esl      map[string]*Response
	eslBang  map[string]*Response
	ptbr     map[string]*Response
	ptbrBang map[string]*Response

	tables map[Lang]Table
}

// Load reads and indexes the three configured trigger files.
func Load(files models.TriggerFiles, logger *zap.Logger) (*Set, error) {
	en, err := LoadTable(files.English)
	if err != nil {
		return nil, err
	}
	esl, err := LoadTable(files.ESL)
	if err != nil {
		return nil, err
	}
	pt, err := LoadTable(files.PTBR)
	if err != nil {
		return nil, err
	}
	return NewSet(en, esl, pt, logger), nil
}

func NewSet(en, esl, pt Table, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Set{
		english: make(map[string]*Response),
		tables:  map[Lang]Table{English: en, ESL: esl, PTBR: pt},
	}

	for _, id := range en.ids() {
		for _, trig := range en[id].Triggers {
			s.english[strings.ToLower(trig)] = en[id]
		}
	}

	s.esl, s.eslBang = indexLocalized(esl, en, logger.With(zap.String("lang", string(ESL))))
	s.ptbr, s.ptbrBang = indexLocalized(pt, en, logger.With(zap.String("lang", string(PTBR))))

	logger.Info("Trigger tables loaded",
		zap.Int("english", len(s.english)),
		zap.Int("esl", len(s.esl)+len(s.eslBang)),
		zap.Int("ptbr", len(s.ptbr)+len(s.ptbrBang)))
	return s
}

// indexLocalized splits a localized table into its own-prefix map and the map
// of "!"-prefixed triggers, and maps every English trigger of a linked
// response to the localized one.
func indexLocalized(t, en Table, logger *zap.Logger) (plain, bang map[string]*Response) {
	plain = make(map[string]*Response)
	bang = make(map[string]*Response)

	for _, id := range t.ids() {
		resp := t[id]
		for _, trig := range resp.Triggers {
			if rest, ok := strings.CutPrefix(trig, "!"); ok {
				bang[strings.ToLower(rest)] = resp
			} else {
				plain[strings.ToLower(trig)] = resp
			}
		}

		if resp.Link == "" {
			continue
		}
		linked, ok := en[string(resp.Link)]
		if !ok {
			logger.Warn("Linked response not found in English triggers",
				zap.String("id", id), zap.String("link", string(resp.Link)))
			continue
		}
		for _, trig := range linked.Triggers {
			plain[strings.ToLower(trig)] = resp
		}
	}
	return plain, bang
}

// Lookup resolves a command typed with prefix. "!" checks English first and
// then the "!"-prefixed localized triggers; "¡" and "@" check the Spanish and
// Portuguese tables.
func (s *Set) Lookup(prefix, command string) (*Response, Lang, bool) {
	cmd := strings.ToLower(command)
	switch prefix {
	case "!":
		if r, ok := s.english[cmd]; ok {
			return r, English, true
		}
		if r, ok := s.eslBang[cmd]; ok {
			return r, ESL, true
		}
		if r, ok := s.ptbrBang[cmd]; ok {
			return r, PTBR, true
		}
	case "¡":
		if r, ok := s.esl[cmd]; ok {
			return r, ESL, true
		}
	case "@":
		if r, ok := s.ptbr[cmd]; ok {
			return r, PTBR, true
		}
	}
	return nil, "", false
}

// Alias is a response's first trigger and its remaining triggers, sorted.
type Alias struct {
	Trigger string
	Aliases []string
}

// ListItems returns the entries shown by the trigger list: the first trigger
// of every English and Spanish response, and the alias groups of responses
// that have more than one trigger.
func (s *Set) ListItems() ([]string, []Alias) {
	enFirst, enAliases := firstTriggers(s.tables[English])
	eslFirst, eslAliases := firstTriggers(s.tables[ESL])

	items := append(enFirst, eslFirst...)

	aliases := make([]Alias, 0, len(enAliases)+len(eslAliases))
	pos := make(map[string]int, len(enAliases)+len(eslAliases))
	for _, group := range [][]Alias{enAliases, eslAliases} {
		for _, a := range group {
			if i, ok := pos[a.Trigger]; ok {
				aliases[i] = a
				continue
			}
			pos[a.Trigger] = len(aliases)
			aliases = append(aliases, a)
		}
	}
	return items, aliases
}

func firstTriggers(t Table) ([]string, []Alias) {
	seen := make(map[string]struct{})
	var first []string
	byTrigger := make(map[string][]string)

	for _, id := range t.ids() {
		trigs := t[id].Triggers
		if len(trigs) == 0 {
			continue
		}
		if _, ok := seen[trigs[0]]; !ok {
			seen[trigs[0]] = struct{}{}
			first = append(first, trigs[0])
		}
		if len(trigs) > 1 {
			byTrigger[trigs[0]] = append([]string(nil), trigs[1:]...)
		}
	}
	sort.Strings(first)

	aliases := make([]Alias, 0, len(byTrigger))
	for trig, rest := range byTrigger {
		sort.Strings(rest)
		aliases = append(aliases, Alias{Trigger: trig, Aliases: rest})
	}
	sort.Slice(aliases, func(i, j int) bool { return aliases[i].Trigger < aliases[j].Trigger })
	return first, aliases
}
