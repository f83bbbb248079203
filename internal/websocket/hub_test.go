package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"inspection-be/internal/pkg/logger"
	"inspection-be/pkg/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, rdb redis.UniversalClient) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := NewHub(rdb, logger.NewNopLogger(), nil)
	go h.Run(ctx)
	return h
}

func attach(t *testing.T, h *Hub, workOrderID uuid.UUID) *Client {
	t.Helper()
	before := h.Count()
	c := &Client{Hub: h, WorkOrderID: workOrderID, Send: make(chan []byte, 8)}
	h.register <- c
	require.Eventually(t, func() bool { return h.Count() == before+1 }, time.Second, 5*time.Millisecond)
	return c
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHub_PublishDeliversToWatchers(t *testing.T) {
	h := startHub(t, nil)
	wo := uuid.New()

	watcher := attach(t, h, wo)
	all := attach(t, h, uuid.Nil)
	other := attach(t, h, uuid.New())

	require.NoError(t, h.Publish(context.Background(), events.NewWorkOrderInspectionCompleted(wo, uuid.New(), 3)))

	assert.Equal(t, events.TypeWorkOrderInspectionCompleted, receive(t, watcher)["type"])
	assert.Equal(t, events.TypeWorkOrderInspectionCompleted, receive(t, all)["type"])
	assert.Empty(t, other.Send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := startHub(t, nil)
	c := attach(t, h, uuid.New())

	h.unregister <- c
	require.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_StopReleasesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil, logger.NewNopLogger(), nil)
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := attach(t, h, uuid.New())
	cancel()
	<-stopped

	_, open := <-c.Send
	assert.False(t, open, "write pumps see a closed channel")
	assert.Equal(t, 0, h.Count())

	left := make(chan struct{})
	go func() {
		h.leave(c)
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after the hub stopped")
	}

	assert.False(t, h.join(&Client{Hub: h, Send: make(chan []byte, 1)}))
	require.NoError(t, h.Publish(context.Background(), events.NewWorkOrderInspectionCompleted(uuid.New(), uuid.New(), 1)))
}

func TestHub_RedisFanOutSkipsOwnEcho(t *testing.T) {
	mr := miniredis.RunT(t)
	newClient := func() redis.UniversalClient {
		c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { c.Close() })
		return c
	}

	a := startHub(t, newClient())
	b := startHub(t, newClient())
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(clusterChannel)[clusterChannel] == 2
	}, time.Second, 5*time.Millisecond)

	wo := uuid.New()
	onA := attach(t, a, wo)
	onB := attach(t, b, wo)

	require.NoError(t, a.Publish(context.Background(), events.NewTaskStarted(wo, uuid.New(), uuid.New(), "Kitchen", "Check sink")))

	assert.Equal(t, events.TypeTaskStarted, receive(t, onA)["type"])
	assert.Equal(t, events.TypeTaskStarted, receive(t, onB)["type"])

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, onA.Send, "origin instance must not deliver its own echo")
}
