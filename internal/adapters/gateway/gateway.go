// Package gateway defines the outbound chat-gateway contract and its HTTP
// client. Authentication retries and delivery guarantees are the gateway
// side's problem; this client posts and reports.
package gateway

import (
	"context"
	"errors"
)

// Gateway delivers replies back to the chat platform.
type Gateway interface {
	// SendMessage posts text to a channel.
	SendMessage(ctx context.Context, text, channel string) error

	// SendThreadedMessage posts text as a reply threaded under the message
	// identified by parentTS.
	SendThreadedMessage(ctx context.Context, text, channel, parentTS string) error

	// SendEphemeral posts text visible only to actor in channel.
	SendEphemeral(ctx context.Context, text, channel, actor string) error
}

// Sentinel kinds for gateway errors.
var (
	ErrNoEndpoint = errors.New("gateway endpoint not configured")
	ErrDelivery   = errors.New("gateway delivery failed")
)
