package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(h, conn).Run()
	}))

	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-h.Done()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_FanOut(t *testing.T) {
	h, srv := startHub(t)
	a := dial(t, srv)
	b := dial(t, srv)

	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, h.Publish("frame", map[string]int{"tick": 7}))

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, kind)

		var env struct {
			Topic string         `json:"topic"`
			Data  map[string]int `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &env))
		assert.Equal(t, "frame", env.Topic)
		assert.Equal(t, 7, env.Data["tick"])
	}
}

func TestHub_Unregister(t *testing.T) {
	h, srv := startHub(t)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	h := New("stop", nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	require.Eventually(t, h.Running, time.Second, time.Millisecond)

	cancel()
	<-h.Done()
	assert.False(t, h.Running())

	// Registering after shutdown must not block.
	c := NewClient(h, nil)
	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := New("slow", nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})

	// No pumps run, so nothing drains the client's buffer.
	NewClient(h, nil)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	for i := 0; i <= clientBuffer; i++ {
		require.True(t, h.Broadcast(Message{Data: []byte("x")}))
	}
	require.Eventually(t, func() bool { return h.Dropped() == 1 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	h := New("full", nil)
	for i := 0; i < broadcastBuffer; i++ {
		require.True(t, h.Broadcast(Message{Data: []byte("x")}))
	}
	assert.False(t, h.Broadcast(Message{Data: []byte("x")}))
}

func TestEncode(t *testing.T) {
	msg, err := Encode("event", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, TextMessage, msg.Type)
	assert.JSONEq(t, `{"topic":"event","data":["a"]}`, string(msg.Data))

	_, err = Encode("bad", func() {})
	assert.Error(t, err)
}
