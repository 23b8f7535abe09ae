package app

import (
	"context"
	"fmt"

	"kudos/internal/domain/model"
	"kudos/internal/domain/parser"
	"kudos/internal/domain/registry"
	"kudos/pkg/logger"
	"kudos/pkg/metrics"
)

// HandleEvent routes one inbound event through the scoring pipeline. It is
// called by exactly one worker per event, so the commands inside a message
// apply strictly in parsed order and later quota checks observe earlier
// mutations from the same message.
func (s *Service) HandleEvent(ctx context.Context, e model.Event) error {
	switch e.Kind {
	case model.KindMessage:
		return s.handleMessage(ctx, e)
	case model.KindMention:
		return s.handleMention(ctx, e)
	case model.KindReaction:
		// Recognized but inert. Reserved for future scoring.
		s.logger.Debug(ctx, "ignoring reaction event",
			logger.String("eventID", e.EventID),
		)
		return nil
	default:
		// Enqueue validates kinds; reaching here is a programmer error.
		s.logger.Warn(ctx, "unroutable event kind",
			logger.String("kind", string(e.Kind)),
		)
		return nil
	}
}

// handleMessage parses free text for point commands and applies them.
func (s *Service) handleMessage(ctx context.Context, e model.Event) error {
	cmds := s.parser.Parse(e.Text, e.Actor)
	if len(cmds) == 0 {
		// Not a command. Silently ignored.
		return nil
	}

	for _, cmd := range cmds {
		if err := s.applyCommand(ctx, e, cmd); err != nil {
			return err
		}
	}
	return nil
}

// applyCommand runs the self-check, quota, store and reply steps for one
// parsed command. Policy denials reply and return nil; only storage faults
// abandon the event.
func (s *Service) applyCommand(ctx context.Context, e model.Event, cmd parser.Command) error {
	if cmd.SelfTarget {
		metrics.RecordSelfTarget()
		s.logger.Info(ctx, "self-target attempt",
			logger.String("actor", cmd.Actor.Name),
			logger.String("channel", e.Channel),
		)
		sc, err := s.store.Query(ctx, cmd.Target.Name)
		if err != nil {
			return fmt.Errorf("query for self-target reply: %w", err)
		}
		s.reply(ctx, e, s.composer.Compose(registry.OpSelfAttempt, cmd.Target, sc.Total, sc.Temp))
		return nil
	}

	allowed, err := s.limiter.Allow(ctx, cmd.Actor.Name)
	if err != nil {
		return fmt.Errorf("quota check for %q: %w", cmd.Actor.Name, err)
	}
	if !allowed {
		metrics.RecordQuotaDenial()
		s.reply(ctx, e, fmt.Sprintf(
			"easy there %s, you've spent all %d operations for this hour",
			cmd.Actor.Mention(), s.limiter.MaxOps(),
		))
		return nil
	}

	op := registry.OpIncrement
	if cmd.Polarity < 0 {
		op = registry.OpDecrement
	}

	sc, err := s.store.Apply(ctx, cmd.Target.Name, cmd.Polarity*cmd.Magnitude)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("apply %s for %q: %w", op, cmd.Target.Name, err)
	}
	metrics.RecordScoreApply()
	metrics.RecordCommandParsed(op.String())

	s.reply(ctx, e, s.composer.Compose(op, cmd.Target, sc.Total, sc.Temp))
	return nil
}

// reply delivers text threaded under the originating message when the
// transport gave us an anchor, standalone otherwise. Delivery failures are
// logged and do not fail the event.
func (s *Service) reply(ctx context.Context, e model.Event, text string) {
	if s.gw == nil {
		return
	}

	var err error
	if e.TS != "" {
		err = s.gw.SendThreadedMessage(ctx, text, e.Channel, e.TS)
	} else {
		err = s.gw.SendMessage(ctx, text, e.Channel)
	}
	if err != nil {
		s.logger.Error(ctx, "reply delivery failed",
			logger.String("channel", e.Channel),
			logger.Error(err),
		)
	}
}

// ephemeral delivers text visible only to the requesting actor.
func (s *Service) ephemeral(ctx context.Context, e model.Event, text string) {
	if s.gw == nil {
		return
	}
	if err := s.gw.SendEphemeral(ctx, text, e.Channel, e.Actor); err != nil {
		s.logger.Error(ctx, "ephemeral delivery failed",
			logger.String("channel", e.Channel),
			logger.Error(err),
		)
	}
}
