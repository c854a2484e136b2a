package live

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHubBroadcastsTeamRegistered(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil)
	hub.Register <- client

	hub.BroadcastTeamRegistered("TeamAlpha", "eagle")

	select {
	case message := <-client.Send:
		var event struct {
			Type    string                `json:"type"`
			Payload TeamRegisteredPayload `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(message, &event))
		assert.Equal(t, "team_registered", event.Type)
		assert.Equal(t, "TeamAlpha", event.Payload.TeamName)
		assert.Equal(t, "eagle", event.Payload.LogoName)
	case <-time.After(time.Second):
		t.Fatal("no broadcast received")
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil)
	hub.Register <- client
	hub.Unregister <- client

	select {
	case _, open := <-client.Send:
		assert.False(t, open, "send channel must be closed on unregister")
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHubDropsMessagesForSlowClients(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil)
	hub.Register <- client

	// Well past the client buffer; the hub must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.BroadcastTeamRegistered("TeamAlpha", "eagle")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub blocked on a slow client")
	}
}
