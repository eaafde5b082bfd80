package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wager_service/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// dialClient spins a server that registers every connection under the
// given player id, and returns the client side of one connection.
func dialClient(t *testing.T, hub *Hub, playerID int64) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go NewClient(playerID, conn, hub).Run()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestPublishReachesOwningPlayerOnly(t *testing.T) {
	hub := NewHub()
	connA := dialClient(t, hub, 1)
	connB := dialClient(t, hub, 2)

	// Registration happens in Run; give the goroutines a beat
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients) == 2
	}, time.Second, 10*time.Millisecond)

	hub.Publish(1, "outcome", map[string]string{"token": "tok-1"})

	msg := readMessage(t, connA)
	var typ string
	require.NoError(t, json.Unmarshal(msg["type"], &typ))
	assert.Equal(t, "outcome", typ)

	// Player 2 must get nothing
	require.NoError(t, connB.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := connB.ReadMessage()
	assert.Error(t, err)
}

func TestForwardOutcomes(t *testing.T) {
	hub := NewHub()
	conn := dialClient(t, hub, 7)

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients) == 1
	}, time.Second, 10*time.Millisecond)

	outcomes := make(chan domain.Outcome, 1)
	hub.ForwardOutcomes(outcomes)
	outcomes <- domain.Outcome{
		Token:    "tok-7",
		PlayerID: 7,
		GameType: domain.GameTypeTower,
		Result:   domain.ResultWon,
	}
	close(outcomes)

	msg := readMessage(t, conn)
	var o domain.Outcome
	require.NoError(t, json.Unmarshal(msg["data"], &o))
	assert.Equal(t, "tok-7", o.Token)
	assert.Equal(t, domain.ResultWon, o.Result)
}

func TestPublishWithoutClientsIsSafe(t *testing.T) {
	hub := NewHub()
	hub.Publish(99, "outcome", map[string]string{"token": "tok"})
}
