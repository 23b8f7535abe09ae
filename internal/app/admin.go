package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"kudos/internal/domain/model"
	"kudos/internal/domain/parser"
	"kudos/internal/domain/registry"
	"kudos/pkg/logger"
	"kudos/pkg/metrics"
)

// adminCommand is the closed table of commands addressed directly to the
// bot. The dispatch switch below is exhaustive over it.
type adminCommand int

const (
	cmdUnknown adminCommand = iota
	cmdLeaderboard
	cmdLeaderboardAll
	cmdHelp
	cmdHelpAll
	cmdThanks
	cmdReincarnate
	cmdIncrement
	cmdDecrement
	cmdQuery
)

// leaderboardSize is the short leaderboard returned without the secret.
const leaderboardSize = 10

const helpText = "I keep score. Mention someone with ++ or reward tokens to give points, " +
	"`score <name>` to look one up, `leaderboard` for the top ten."

const helpAllText = helpText + " Admins: `reincarnate` resets era scores, " +
	"`leaderboardall <secret>` lists everyone."

// parseAdminCommand resolves the first word of a bot-addressed message.
// Scoring symbols fall through to the shared operation registry.
func parseAdminCommand(word string) adminCommand {
	switch word {
	case "leaderboard":
		return cmdLeaderboard
	case "leaderboardall":
		return cmdLeaderboardAll
	case "help":
		return cmdHelp
	case "helpall":
		return cmdHelpAll
	case "thx", "thanks", "thankyou":
		return cmdThanks
	case "reincarnate":
		return cmdReincarnate
	}

	op, ok := registry.Lookup(word)
	if !ok {
		return cmdUnknown
	}
	switch op {
	case registry.OpIncrement:
		return cmdIncrement
	case registry.OpDecrement:
		return cmdDecrement
	case registry.OpQuery:
		return cmdQuery
	default:
		return cmdUnknown
	}
}

// handleMention handles events where the acting entity addresses the bot
// directly.
func (s *Service) handleMention(ctx context.Context, e model.Event) error {
	args := strings.Fields(s.stripBotMention(e.Text))
	if len(args) == 0 {
		s.ephemeral(ctx, e, "yes? try `help`")
		return nil
	}

	switch parseAdminCommand(strings.ToLower(args[0])) {
	case cmdLeaderboard:
		return s.sendLeaderboard(ctx, e, leaderboardSize)

	case cmdLeaderboardAll:
		if len(args) < 2 || args[1] != s.derivedSecret() {
			s.ephemeral(ctx, e, "that secret isn't right today")
			return nil
		}
		n := s.store.Count(ctx)
		if n == 0 {
			s.reply(ctx, e, "nobody has any points yet")
			return nil
		}
		return s.sendLeaderboard(ctx, e, n)

	case cmdHelp:
		s.ephemeral(ctx, e, helpText)
		return nil

	case cmdHelpAll:
		s.reply(ctx, e, helpAllText)
		return nil

	case cmdThanks:
		s.reply(ctx, e, "you're welcome, "+model.UserItem(e.Actor).Mention())
		return nil

	case cmdReincarnate:
		if err := s.store.ResetEra(ctx); err != nil {
			metrics.RecordStoreError()
			return fmt.Errorf("reset era: %w", err)
		}
		metrics.RecordEraReset()
		s.logger.Info(ctx, "era reset",
			logger.String("actor", e.Actor),
		)
		s.reply(ctx, e, "a new era begins. era scores are zero again; lifetime totals stand.")
		return nil

	case cmdIncrement:
		return s.directOperation(ctx, e, args, 1)

	case cmdDecrement:
		return s.directOperation(ctx, e, args, -1)

	case cmdQuery:
		if len(args) < 2 {
			s.ephemeral(ctx, e, "score of what? try `score <name>`")
			return nil
		}
		target := parser.Target(args[1])
		sc, err := s.store.Query(ctx, target.Name)
		if err != nil {
			metrics.RecordStoreError()
			return fmt.Errorf("query %q: %w", target.Name, err)
		}
		metrics.RecordCommandParsed(registry.OpQuery.String())
		s.reply(ctx, e, s.composer.Compose(registry.OpQuery, target, sc.Total, sc.Temp))
		return nil

	case cmdUnknown:
		s.ephemeral(ctx, e, "sorry, I didn't understand that. try `help`")
		return nil
	}
	return nil
}

// directOperation handles the explicit increment/decrement forms. They run
// the same self-check, quota and apply pipeline as free-text commands.
func (s *Service) directOperation(ctx context.Context, e model.Event, args []string, polarity int64) error {
	if len(args) < 2 {
		s.ephemeral(ctx, e, "who gets the points? try `inc <name> [n]`")
		return nil
	}

	magnitude := int64(1)
	if len(args) >= 3 {
		n, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil || n < 1 {
			s.ephemeral(ctx, e, "the amount has to be a positive number")
			return nil
		}
		magnitude = n
	}

	actor := model.UserItem(e.Actor)
	target := parser.Target(args[1])

	return s.applyCommand(ctx, e, parser.Command{
		Target:     target,
		Actor:      actor,
		Magnitude:  magnitude,
		Polarity:   polarity,
		SelfTarget: target.Same(actor),
	})
}

// sendLeaderboard renders the top n entries as one message.
func (s *Service) sendLeaderboard(ctx context.Context, e model.Event, n int) error {
	entries, err := s.store.TopN(ctx, n)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("leaderboard query: %w", err)
	}
	if len(entries) == 0 {
		s.reply(ctx, e, "nobody has any points yet")
		return nil
	}

	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "%d. %s: %d (%d this era)\n", entry.Rank, entry.Item, entry.Total, entry.Temp)
	}
	s.reply(ctx, e, strings.TrimRight(b.String(), "\n"))
	return nil
}

// stripBotMention removes the leading bot mention from a direct address.
func (s *Service) stripBotMention(text string) string {
	text = strings.TrimSpace(text)
	if s.botUser != "" {
		prefix := "<@" + s.botUser + ">"
		if strings.HasPrefix(strings.ToLower(text), strings.ToLower(prefix)) {
			text = text[len(prefix):]
		}
	}
	return strings.TrimSpace(text)
}

// derivedSecret gates the full leaderboard: the first 8 hex characters of
// SHA-256(salt + UTC date), rotating daily.
func (s *Service) derivedSecret() string {
	day := s.clock().UTC().Format("2006-01-02")
	sum := sha256.Sum256([]byte(s.secretSalt + day))
	return hex.EncodeToString(sum[:])[:8]
}
