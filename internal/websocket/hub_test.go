package websocket

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

	"tpodash/internal/config"
	"tpodash/internal/infrastructure"
	"tpodash/internal/shared/testutil"
	"tpodash/pkg/contracts/domain"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger, config.WebSocketConfig{})
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func decode(t *testing.T, data []byte) Message {
	t.Helper()
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func waitForMessages(t *testing.T, conn *MockConnection, n int) []MockMessage {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(conn.GetWrittenMessages()) >= n
	}, 2*time.Second, 10*time.Millisecond)
	return conn.GetWrittenMessages()
}

func TestNewHub_KeepaliveDefaults(t *testing.T) {
	hub := NewHub(nil, config.WebSocketConfig{PingPeriod: 2 * time.Minute})
	assert.Equal(t, config.WebSocketPongWait, hub.pongWait)
	assert.Less(t, hub.pingPeriod, hub.pongWait)
}

func TestHub_RegisterSendsConnectionMessage(t *testing.T) {
	hub := newTestHub(t)
	conn := NewMockConnection()
	client := NewClient(hub, conn, "trace-1", nil)
	go client.WritePump()

	hub.Register(client)

	msgs := waitForMessages(t, conn, 1)
	msg := decode(t, msgs[0].Data)
	assert.Equal(t, TypeConnection, msg.Type)
	assert.Equal(t, "trace-1", msg.TraceID)
	data, ok := msg.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, client.ID(), data["client_id"])
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHub_PublishEvent(t *testing.T) {
	hub := newTestHub(t)

	conns := []*MockConnection{NewMockConnection(), NewMockConnection()}
	for _, conn := range conns {
		client := NewClient(hub, conn, "", nil)
		go client.WritePump()
		hub.Register(client)
		waitForMessages(t, conn, 1)
	}

	ctx := infrastructure.WithTraceID(context.Background(), "req-9")
	hub.PublishEvent(ctx, domain.DatasetEvent{
		Type:     domain.EventFileAdded,
		FileID:   "f1",
		FileName: "ce_2023.csv",
		Kind:     domain.FileKindResult,
	})

	for _, conn := range conns {
		msgs := waitForMessages(t, conn, 2)
		msg := decode(t, msgs[1].Data)
		assert.Equal(t, domain.EventFileAdded, msg.Type)
		assert.Equal(t, "req-9", msg.TraceID)
		data, ok := msg.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "ce_2023.csv", data["file_name"])
		assert.Equal(t, "result", data["kind"])
		assert.NotEmpty(t, data["timestamp"])
	}
	assert.Equal(t, int64(2), hub.Stats()["messages_sent"])
}

func TestClient_ReadPumpUnregistersOnClose(t *testing.T) {
	hub := newTestHub(t)
	conn := NewMockConnection()
	client := NewClient(hub, conn, "", nil)

	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		client.ReadPump()
		close(done)
	}()

	conn.AddReadMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`), nil)
	conn.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("read pump did not stop")
	}
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(maxMessageSize), conn.ReadLimit)
	assert.NotNil(t, conn.PongHandler)
}

func TestHub_StopClosesClients(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger, config.WebSocketConfig{})
	hub.Start()

	conn := NewMockConnection()
	client := NewClient(hub, conn, "", nil)
	go client.WritePump()
	hub.Register(client)
	waitForMessages(t, conn, 1)

	hub.Stop()

	assert.Eventually(t, conn.IsClosed, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())

	// Calls after Stop return instead of blocking
	hub.Register(NewClient(hub, NewMockConnection(), "", nil))
	hub.PublishEvent(context.Background(), domain.DatasetEvent{Type: domain.EventReloaded})
	hub.Stop()
}

func TestNewUpgrader_CheckOrigin(t *testing.T) {
	up := NewUpgrader(config.WebSocketConfig{ReadBufferSize: 1024, WriteBufferSize: 1024}, []string{"http://localhost:8080"})

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:8080", true},
		{"http://evil.test", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, up.CheckOrigin(req), tt.origin)
	}

	open := NewUpgrader(config.WebSocketConfig{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://anything.test")
	assert.True(t, open.CheckOrigin(req))
}

func TestServeWS_EndToEnd(t *testing.T) {
	hub := newTestHub(t)
	up := NewUpgrader(config.WebSocketConfig{ReadBufferSize: 1024, WriteBufferSize: 1024}, nil)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, up, w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, TypeConnection, decode(t, data).Type)

	hub.PublishEvent(context.Background(), domain.DatasetEvent{Type: domain.EventFileRemoved, FileID: "abc"})

	_, data, err = ws.ReadMessage()
	require.NoError(t, err)
	msg := decode(t, data)
	assert.Equal(t, domain.EventFileRemoved, msg.Type)
}
