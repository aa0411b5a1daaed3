package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_BroadcastsFlipToTableWatchers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	ts := newTestServer(t, hub)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	view := ts.newTable(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?tableId=" + view.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	welcome := readMessage(t, conn)
	assert.Equal(t, EventWelcome, welcome.Type)
	assert.Equal(t, view.ID, welcome.TableID)

	require.Eventually(t, func() bool { return hub.ClientCount(view.ID) == 1 },
		time.Second, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/api/table/"+view.ID+"/flip", "application/json",
		strings.NewReader(`{"cardId": 1}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	update := readMessage(t, conn)
	assert.Equal(t, EventTableUpdate, update.Type)
	data, ok := update.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 10000, data["total"])

	pending := readMessage(t, conn)
	assert.Equal(t, EventWishPending, pending.Type)

	// Other tables hear nothing
	assert.Equal(t, 0, hub.ClientCount("other"))
}

func TestHub_RequiresTableID(t *testing.T) {
	hub := NewHub(nil)
	rec := httptest.NewRecorder()

	hub.WebSocketHandler(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHub_ShutdownDisconnectsClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	srv := httptest.NewServer(http.HandlerFunc(hub.WebSocketHandler))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"?tableId=t1", nil)
	require.NoError(t, err)
	defer conn.Close()

	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount("t1") == 1 },
		time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, hub.ClientCount("t1"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_ConcurrentFlipsArriveInVersionOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	ts := newTestServer(t, hub)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	const cards = 20
	rec := ts.do(t, http.MethodPost, "/api/table/new", map[string]int{"deckSize": cards, "turnLimit": cards})
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decode[TableView](t, rec)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws?tableId="+view.ID, nil)
	require.NoError(t, err)
	defer conn.Close()

	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount(view.ID) == 1 },
		time.Second, 10*time.Millisecond)

	var wg sync.WaitGroup
	for id := 0; id < cards; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			ts.do(t, http.MethodPost, "/api/table/"+view.ID+"/flip", map[string]int{"cardId": id})
		}(id)
	}
	wg.Wait()

	var versions []float64
	for len(versions) < cards {
		msg := readMessage(t, conn)
		if msg.Type != EventTableUpdate {
			continue
		}
		data, ok := msg.Data.(map[string]interface{})
		require.True(t, ok)
		versions = append(versions, data["version"].(float64))
	}

	for i := 1; i < len(versions); i++ {
		assert.Less(t, versions[i-1], versions[i], "tableUpdate %d arrived out of order", i)
	}
}
