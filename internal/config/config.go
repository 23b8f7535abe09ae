// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Layer optional file and env on top in Load.
// - External errors are wrapped via this package's sentinels.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// GatewayURL is the chat-gateway webhook replies are posted to.
	GatewayURL string `koanf:"gateway_url"`

	// GatewayToken is the chat-platform credential.
	GatewayToken string `koanf:"gateway_token"`

	// GatewayInsecureTLS disables certificate verification toward the
	// gateway. The embedded score store has no transport of its own, so
	// this is where the deployment's TLS toggle lives.
	GatewayInsecureTLS bool `koanf:"gateway_insecure_tls"`

	// DatabaseDSN points at the SQLite score database. Empty selects the
	// in-memory store.
	DatabaseDSN string `koanf:"database_dsn"`

	// MaxOps caps operations per actor per rolling hour.
	MaxOps int `koanf:"max_ops"`

	// RewardToken is counted as one point wherever it appears in a message.
	RewardToken string `koanf:"reward_token"`

	// PenaltyToken is counted for the compensating-decrement policy.
	PenaltyToken string `koanf:"penalty_token"`

	// CompensationEnabled turns on the privileged compensating-decrement
	// policy. Off by default.
	CompensationEnabled bool `koanf:"compensation_enabled"`

	// PrivilegedActor is the actor id the compensation policy applies to.
	PrivilegedActor string `koanf:"privileged_actor"`

	// BotUserID is the bot's own platform user id.
	BotUserID string `koanf:"bot_user_id"`

	// SecretSalt seeds the daily derived secret gating leaderboardall.
	SecretSalt string `koanf:"secret_salt"`

	// WorkerCount sets the number of dispatch workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory event queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the redelivery guard.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8080",
		MaxOps:              60,
		RewardToken:         ":taco:",
		PenaltyToken:        ":rotten_taco:",
		SecretSalt:          "kudos",
		WorkerCount:         runtime.NumCPU() * 2,
		QueueSize:           10_000,
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
	}
}
