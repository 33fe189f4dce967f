package handler

import (
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

func readMessage(t *testing.T, conn *websocket.Conn) WebSocketMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WebSocketMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestEventStreamRelaysSessionStatus(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.engine)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	hello := readMessage(t, conn)
	assert.Equal(t, "session", hello.Type)
	assert.Equal(t, false, hello.Data.(map[string]interface{})["connected"])

	require.NoError(t, conn.WriteJSON(WebSocketMessage{Type: "ping"}))
	assert.Equal(t, "pong", readMessage(t, conn).Type)

	resp, err := http.Post(server.URL+"/api/v1/session/connect", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var messages []string
	for len(messages) < 4 {
		msg := readMessage(t, conn)
		if msg.Type != EventSessionStatus {
			continue
		}
		messages = append(messages, msg.Data.(map[string]interface{})["message"].(string))
	}
	assert.Equal(t, []string{"Connecting to device...", "Test sensor", "Reading config...", "Config read from device!"}, messages)
}

func TestConnectionStatsListsClients(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.engine)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	code, resp := env.do(t, http.MethodGet, "/ws/stats", nil)
	require.Equal(t, http.StatusOK, code)

	var stats ConnectionStats
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, 1, stats.TotalConnections)
	require.Len(t, stats.Clients, 1)
	assert.NotEmpty(t, stats.Clients[0].ID)
}
