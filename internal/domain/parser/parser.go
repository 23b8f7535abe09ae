// Package parser turns raw chat message text into ordered point commands.
//
// Parsing is a pure function of the input text and acting identity; it
// performs no I/O and has no side effects.
package parser

import (
	"regexp"
	"strings"

	"kudos/internal/domain/model"
)

// Default command tokens.
const (
	defaultRewardToken  = ":taco:"
	defaultPenaltyToken = ":rotten_taco:"
)

// mentionRE matches platform mention markup, with an optional display
// segment after a pipe as some gateways render it.
var mentionRE = regexp.MustCompile(`<@([A-Za-z0-9]+)(?:\|[^>]*)?>`)

// suffixRE matches a mention immediately followed by an increment marker.
var suffixRE = regexp.MustCompile(`<@([A-Za-z0-9]+)(?:\|[^>]*)?>\+\+`)

// Command is one unit of work extracted from a message.
type Command struct {
	Target     model.Item
	Actor      model.Item
	Magnitude  int64 // always >= 1
	Polarity   int64 // +1 or -1
	SelfTarget bool  // target equals actor; never applied to the store
}

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithRewardToken sets the token counted as a point each time it appears.
func WithRewardToken(token string) Option {
	return func(p *Parser) {
		if token != "" {
			p.rewardToken = token
		}
	}
}

// WithPenaltyToken sets the token counted for compensating decrements.
func WithPenaltyToken(token string) Option {
	return func(p *Parser) {
		if token != "" {
			p.penaltyToken = token
		}
	}
}

// WithCompensation enables the privileged compensating-decrement policy for
// the given actor id. Off unless configured.
func WithCompensation(privilegedActor string) Option {
	return func(p *Parser) {
		if privilegedActor != "" {
			p.compensation = true
			p.privileged = strings.ToLower(privilegedActor)
		}
	}
}

// WithBotUser sets the bot's own user id so mentions of the bot are not
// treated as scoring targets.
func WithBotUser(id string) Option {
	return func(p *Parser) {
		p.botUser = strings.ToLower(id)
	}
}

// Parser extracts point commands from free-text messages.
type Parser struct {
	rewardToken  string
	penaltyToken string
	privileged   string
	compensation bool
	botUser      string
}

// New creates a Parser with configuration options.
func New(opts ...Option) *Parser {
	p := &Parser{
		rewardToken:  defaultRewardToken,
		penaltyToken: defaultPenaltyToken,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse returns the ordered commands found in text, attributed to actor.
// A message with no recognizable target+token combination yields an empty
// result; that is "not a command", not an error.
func (p *Parser) Parse(text, actor string) []Command {
	targets := p.mentions(text)
	if len(targets) == 0 {
		return nil
	}

	magnitude := int64(strings.Count(text, p.rewardToken))
	if magnitude == 0 {
		// The bare ++ form scores only the mentions it is attached to.
		targets = suffixed(targets, text)
		if len(targets) == 0 {
			return nil
		}
		magnitude = 1
	}

	actorItem := model.UserItem(actor)

	// The same magnitude applies independently to every target.
	cmds := make([]Command, 0, len(targets))
	for _, t := range targets {
		cmds = append(cmds, Command{
			Target:     t,
			Actor:      actorItem,
			Magnitude:  magnitude,
			Polarity:   1,
			SelfTarget: t.Same(actorItem),
		})
	}

	if p.compensation && strings.ToLower(actor) == p.privileged {
		if penalty := int64(strings.Count(text, p.penaltyToken)); penalty > 0 {
			for _, t := range targets {
				cmds = append(cmds, Command{
					Target:     t,
					Actor:      actorItem,
					Magnitude:  penalty,
					Polarity:   -1,
					SelfTarget: t.Same(actorItem),
				})
			}
		}
	}

	return cmds
}

// Target interprets a single command argument as an item: mention markup
// resolves to a platform user, anything else is a free-text thing.
func Target(token string) model.Item {
	if m := mentionRE.FindStringSubmatch(token); m != nil {
		return model.UserItem(m[1])
	}
	return model.ThingItem(strings.Trim(token, "@"))
}

// suffixed keeps the targets whose own mention carries the ++ marker.
func suffixed(targets []model.Item, text string) []model.Item {
	matches := suffixRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	marked := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		marked[strings.ToLower(m[1])] = struct{}{}
	}

	kept := targets[:0]
	for _, t := range targets {
		if _, ok := marked[t.Key()]; ok {
			kept = append(kept, t)
		}
	}
	return kept
}

// mentions returns the distinct mentioned users in first-appearance order,
// skipping the bot's own mention.
func (p *Parser) mentions(text string) []model.Item {
	matches := mentionRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	items := make([]model.Item, 0, len(matches))
	for _, m := range matches {
		id := m[1]
		key := strings.ToLower(id)
		if key == p.botUser {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, model.UserItem(id))
	}
	return items
}
