// Package model contains domain models passed between layers.
package model

import "strings"

// Kind discriminates inbound chat event types.
type Kind string

// Recognized event kinds as delivered by the chat gateway.
const (
	KindMessage  Kind = "message"
	KindMention  Kind = "app_mention"
	KindReaction Kind = "reaction"
)

// Event is the inbound chat event envelope handed over by the gateway.
type Event struct {
	EventID string // gateway delivery id, used to suppress redeliveries
	Kind    Kind   // message, app_mention or reaction
	Channel string // channel the event originated in
	Actor   string // platform user id of the sender
	Text    string // raw message text; empty for reactions
	TS      string // platform timestamp of the message, thread anchor for replies
}

// Item is the identity of something being scored: a platform user or an
// arbitrary free-text thing. Identity comparison is case-insensitive.
type Item struct {
	Name string
	User bool // true when Name is a platform user id
}

// UserItem builds an Item for a platform user id.
func UserItem(id string) Item { return Item{Name: id, User: true} }

// ThingItem builds an Item for a free-text name.
func ThingItem(name string) Item { return Item{Name: name} }

// Key returns the canonical identity used for storage and comparison.
func (i Item) Key() string { return strings.ToLower(i.Name) }

// Mention renders the item for a reply: a clickable mention for platform
// users, plain text otherwise.
func (i Item) Mention() string {
	if i.User {
		return "<@" + i.Name + ">"
	}
	return i.Name
}

// Same reports whether two items share the same case-insensitive identity.
func (i Item) Same(other Item) bool { return i.Key() == other.Key() }
