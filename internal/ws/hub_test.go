package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
}

func TestHub_AddAndRemoveClient(t *testing.T) {
	hub := startHub(t)

	client := &Client{hub: hub, send: make(chan []byte, 1)}

	hub.register <- client
	require.Eventually(t, func() bool { return hub.ConnectedClients() == 1 }, time.Second, 10*time.Millisecond)

	hub.unregister <- client
	require.Eventually(t, func() bool { return hub.ConnectedClients() == 0 }, time.Second, 10*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open, "send channel closed on unregister")
}

func TestHub_Broadcast(t *testing.T) {
	hub := startHub(t)

	client := &Client{hub: hub, send: make(chan []byte, 10)}
	hub.register <- client
	require.Eventually(t, func() bool { return hub.ConnectedClients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(EventDetectionCompleted, map[string]int{"faces": 2})

	select {
	case msg := <-client.send:
		var event struct {
			Type EventType      `json:"type"`
			Data map[string]int `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, EventDetectionCompleted, event.Type)
		assert.Equal(t, 2, event.Data["faces"])
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestHub_Filter(t *testing.T) {
	hub := startHub(t)

	cameraOnly := &Client{hub: hub, filter: parseFilter("camera.captured"), send: make(chan []byte, 10)}
	everything := &Client{hub: hub, filter: parseFilter(""), send: make(chan []byte, 10)}

	hub.register <- cameraOnly
	hub.register <- everything
	require.Eventually(t, func() bool { return hub.ConnectedClients() == 2 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(EventDetectionStarted, nil)

	select {
	case <-everything.send:
	case <-time.After(time.Second):
		t.Fatal("unfiltered client should receive the event")
	}

	select {
	case <-cameraOnly.send:
		t.Fatal("filtered client should not receive detection events")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := startHub(t)

	slow := &Client{hub: hub, send: make(chan []byte)}
	hub.register <- slow
	require.Eventually(t, func() bool { return hub.ConnectedClients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(EventDetectionFailed, nil)

	require.Eventually(t, func() bool { return hub.ConnectedClients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_RunStopsOnContext(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- client

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, 0, hub.ConnectedClients())
}

func TestParseFilter(t *testing.T) {
	assert.Empty(t, parseFilter(""))
	assert.Equal(t, map[EventType]bool{
		EventDetectionCompleted: true,
		EventCameraCaptured:     true,
	}, parseFilter("detection.completed, camera.captured,"))
}

func TestHub_JoinAfterStop(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	assert.False(t, hub.join(client))

	left := make(chan struct{})
	go func() {
		hub.leave(client)
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked on a stopped hub")
	}
}
