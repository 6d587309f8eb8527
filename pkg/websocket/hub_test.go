package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrides/openrides/pkg/logger"
)

func TestBroadcastDropsStalledClient(t *testing.T) {
	h := NewHub(logger.NewNop())
	go h.Run()

	healthy := &Client{ID: "a", UserID: "u1", Send: make(chan []byte, 4)}
	stalled := &Client{ID: "b", UserID: "u2", Send: make(chan []byte)}
	h.Register(healthy)
	h.Register(stalled)
	require.Eventually(t, func() bool { return h.ActiveConnections() == 2 },
		time.Second, 10*time.Millisecond)

	h.Broadcast(Message{Type: "trip_status"})

	require.Eventually(t, func() bool { return h.ActiveConnections() == 1 },
		time.Second, 10*time.Millisecond)
	assert.NotEmpty(t, <-healthy.Send)
}

func TestSendToUserTargetsOnlyThatUser(t *testing.T) {
	h := NewHub(logger.NewNop())
	go h.Run()

	target := &Client{ID: "a", UserID: "u1", Send: make(chan []byte, 4)}
	other := &Client{ID: "b", UserID: "u2", Send: make(chan []byte, 4)}
	h.Register(target)
	h.Register(other)
	require.Eventually(t, func() bool { return h.ActiveConnections() == 2 },
		time.Second, 10*time.Millisecond)

	h.SendToUser("u1", Message{Type: "bid_accepted"})

	select {
	case msg := <-target.Send:
		assert.Contains(t, string(msg), "bid_accepted")
	case <-time.After(time.Second):
		t.Fatal("target client never received the message")
	}
	assert.Empty(t, other.Send)
}
