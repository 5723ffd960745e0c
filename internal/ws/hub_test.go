package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastJSONQueuesMessage(t *testing.T) {
	h := NewHub()
	h.BroadcastJSON(map[string]interface{}{"type": "notification", "id": 1})

	select {
	case msg := <-h.Broadcast:
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &got))
		assert.Equal(t, "notification", got["type"])
	case <-time.After(time.Second):
		t.Fatal("message was not queued")
	}
}

func TestBroadcastJSONDropsUnmarshalable(t *testing.T) {
	h := NewHub()
	h.BroadcastJSON(map[string]interface{}{"bad": make(chan int)})
	assert.Len(t, h.Broadcast, 0)
	assert.Equal(t, 0, h.ClientCount())
}

func TestBroadcastJSONDropsWhenQueueFull(t *testing.T) {
	h := NewHub()
	h.sendTimeout = 10 * time.Millisecond
	for i := 0; i < cap(h.Broadcast); i++ {
		h.Broadcast <- []byte("queued")
	}

	done := make(chan struct{})
	go func() {
		h.BroadcastJSON(map[string]interface{}{"type": "notification"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastJSON blocked on a full queue")
	}

	assert.Len(t, h.Broadcast, cap(h.Broadcast))
	assert.Equal(t, []byte("queued"), <-h.Broadcast)
}

func TestBroadcastJSONWaitsForRoom(t *testing.T) {
	h := NewHub()
	h.sendTimeout = time.Second
	for i := 0; i < cap(h.Broadcast); i++ {
		h.Broadcast <- []byte("queued")
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		<-h.Broadcast
	}()
	h.BroadcastJSON(map[string]interface{}{"type": "late"})
	assert.Len(t, h.Broadcast, cap(h.Broadcast))
}
