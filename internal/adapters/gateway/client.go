package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"kudos/pkg/metrics"
)

// defaultTimeout bounds a single outbound delivery.
const defaultTimeout = 10 * time.Second

// message is the wire shape posted to the gateway webhook.
type message struct {
	Text          string `json:"text"`
	Channel       string `json:"channel"`
	ThreadTS      string `json:"thread_ts,omitempty"`
	EphemeralUser string `json:"ephemeral_user,omitempty"`
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithToken sets the bearer credential sent with every delivery.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithInsecureTLS disables certificate verification toward the gateway.
func WithInsecureTLS(insecure bool) Option {
	return func(c *Client) {
		if insecure {
			c.http.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // explicit deployment toggle
			}
		}
	}
}

// Client implements Gateway over a JSON webhook.
type Client struct {
	url   string
	token string
	http  *http.Client
}

// NewClient creates a gateway client for the webhook at url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:  url,
		http: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) SendMessage(ctx context.Context, text, channel string) error {
	return c.post(ctx, "channel", message{Text: text, Channel: channel})
}

func (c *Client) SendThreadedMessage(ctx context.Context, text, channel, parentTS string) error {
	return c.post(ctx, "thread", message{Text: text, Channel: channel, ThreadTS: parentTS})
}

func (c *Client) SendEphemeral(ctx context.Context, text, channel, actor string) error {
	return c.post(ctx, "ephemeral", message{Text: text, Channel: channel, EphemeralUser: actor})
}

func (c *Client) post(ctx context.Context, delivery string, m message) error {
	if c.url == "" {
		return ErrNoEndpoint
	}

	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode gateway message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordReplyFailure()
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordReplyFailure()
		return fmt.Errorf("%w: status %d", ErrDelivery, resp.StatusCode)
	}

	metrics.RecordReplySent(delivery)
	return nil
}
