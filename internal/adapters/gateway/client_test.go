package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kudos/internal/adapters/gateway"
)

type capturedRequest struct {
	auth        string
	contentType string
	body        map[string]any
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		captured.contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestClientSendMessage(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK)
	client := gateway.NewClient(srv.URL, gateway.WithToken("xoxb-test"))

	err := client.SendMessage(context.Background(), "alice now has 3 point(s)", "C123")
	require.NoError(t, err)

	assert.Equal(t, "Bearer xoxb-test", captured.auth)
	assert.Equal(t, "application/json", captured.contentType)
	assert.Equal(t, map[string]any{
		"text":    "alice now has 3 point(s)",
		"channel": "C123",
	}, captured.body)
}

func TestClientSendThreadedMessage(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK)
	client := gateway.NewClient(srv.URL)

	err := client.SendThreadedMessage(context.Background(), "nice try", "C123", "1700000000.000100")
	require.NoError(t, err)

	assert.Empty(t, captured.auth)
	assert.Equal(t, "1700000000.000100", captured.body["thread_ts"])
	assert.Equal(t, "C123", captured.body["channel"])
}

func TestClientSendEphemeral(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK)
	client := gateway.NewClient(srv.URL)

	err := client.SendEphemeral(context.Background(), "only you can see this", "C123", "U42")
	require.NoError(t, err)

	assert.Equal(t, "U42", captured.body["ephemeral_user"])
	assert.NotContains(t, captured.body, "thread_ts")
}

func TestClientErrors(t *testing.T) {
	t.Run("no endpoint configured", func(t *testing.T) {
		client := gateway.NewClient("")
		err := client.SendMessage(context.Background(), "hi", "C123")
		assert.ErrorIs(t, err, gateway.ErrNoEndpoint)
	})

	t.Run("non-2xx response", func(t *testing.T) {
		srv, _ := newCaptureServer(t, http.StatusBadGateway)
		client := gateway.NewClient(srv.URL)
		err := client.SendMessage(context.Background(), "hi", "C123")
		assert.ErrorIs(t, err, gateway.ErrDelivery)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		srv, _ := newCaptureServer(t, http.StatusOK)
		srv.Close()
		client := gateway.NewClient(srv.URL)
		err := client.SendMessage(context.Background(), "hi", "C123")
		assert.ErrorIs(t, err, gateway.ErrDelivery)
	})
}
