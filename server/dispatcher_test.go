package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/corpdata-hub/database"
	"github.com/blogem/corpdata-hub/logging"
	"github.com/blogem/corpdata-hub/models"
	"github.com/blogem/corpdata-hub/repositories"
	"github.com/blogem/corpdata-hub/services"
)

type testServer struct {
	addr       string
	db         *database.DB
	dispatcher *Dispatcher
	srvs       *services.Services
	cancel     context.CancelFunc
	done       chan error
}

func startServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Open(context.Background(), database.Options{
		Path:        filepath.Join(t.TempDir(), "corporate_data.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)

	srvs := services.NewServices(repositories.NewRepositories(db), logging.Discard())
	return startWithServices(t, db, srvs)
}

func startWithServices(t *testing.T, db *database.DB, srvs *services.Services) *testServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	d := New(Config{MaxRequestBytes: 64 * 1024, NotifyTimeout: time.Second}, srvs, logging.Discard())
	ts := &testServer{
		addr:       ln.Addr().String(),
		db:         db,
		dispatcher: d,
		srvs:       srvs,
		cancel:     cancel,
		done:       make(chan error, 1),
	}
	go func() { ts.done <- d.Serve(ctx, ln) }()

	t.Cleanup(func() {
		ts.stop(t)
		if db != nil {
			db.Close()
		}
	})
	return ts
}

func (ts *testServer) stop(t *testing.T) {
	ts.cancel()
	select {
	case err := <-ts.done:
		assert.NoError(t, err)
		ts.done <- nil
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

// roundTrip sends one raw request and reads the response until the server closes
func (ts *testServer) roundTrip(t *testing.T, raw string) map[string]any {
	t.Helper()
	body := ts.roundTripRaw(t, raw)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(body, &resp), "response: %s", body)
	return resp
}

func (ts *testServer) roundTripRaw(t *testing.T, raw string) []byte {
	t.Helper()
	conn, err := net.Dial("tcp", ts.addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(raw))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	body, err := io.ReadAll(conn)
	require.NoError(t, err)
	return body
}

func (ts *testServer) auditActions(t *testing.T) []string {
	t.Helper()
	rows, err := ts.db.Query(`SELECT action FROM corporate_log ORDER BY rowid`)
	require.NoError(t, err)
	defer rows.Close()

	var actions []string
	for rows.Next() {
		var action string
		require.NoError(t, rows.Scan(&action))
		actions = append(actions, action)
	}
	require.NoError(t, rows.Err())
	return actions
}

type subscriberConn struct {
	conn net.Conn
	dec  *json.Decoder
}

func (ts *testServer) subscribe(t *testing.T, clientID string) *subscriberConn {
	t.Helper()
	conn, err := net.Dial("tcp", ts.addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Write([]byte(`{"ACTION":"subscribe","UUID":"` + clientID + `"}`))
	require.NoError(t, err)

	sub := &subscriberConn{conn: conn, dec: json.NewDecoder(bufio.NewReader(conn))}
	ack := sub.next(t)
	require.Equal(t, "OK", ack["status"])
	require.Equal(t, "client "+clientID+" subscribed", ack["message"])
	return sub
}

func (s *subscriberConn) next(t *testing.T) map[string]any {
	t.Helper()
	require.NoError(t, s.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]any
	require.NoError(t, s.dec.Decode(&msg))
	return msg
}

// expectNothing asserts that no message arrives within the wait
func (s *subscriberConn) expectNothing(t *testing.T, wait time.Duration) {
	t.Helper()
	require.NoError(t, s.conn.SetReadDeadline(time.Now().Add(wait)))
	var msg map[string]any
	err := s.dec.Decode(&msg)
	require.Error(t, err, "unexpected message: %v", msg)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestSetThenGet(t *testing.T) {
	ts := startServer(t)

	resp := ts.roundTrip(t, `{"ACTION":"set","UUID":"c1","id":"x1","value":3.5}`)
	assert.Equal(t, map[string]any{"id": "x1", "value": 3.5}, resp)

	resp = ts.roundTrip(t, `{"ACTION":"get","UUID":"c1","ID":"x1"}`)
	assert.Equal(t, map[string]any{"id": "x1", "value": 3.5}, resp)

	assert.Equal(t, []string{models.ActionSet, models.ActionGet}, ts.auditActions(t))
}

func TestResponseIsIndented(t *testing.T) {
	ts := startServer(t)

	body := ts.roundTripRaw(t, `{"ACTION":"set","UUID":"c1","id":"x1","value":3.5}`)
	assert.Equal(t, "{\n    \"id\": \"x1\",\n    \"value\": 3.5\n}\n", string(body))
}

func TestSetPreservesDecimalPrecision(t *testing.T) {
	ts := startServer(t)

	ts.roundTripRaw(t, `{"ACTION":"set","UUID":"c1","id":"p","amount":0.1000000000000000055511151231257827}`)
	body := ts.roundTripRaw(t, `{"ACTION":"get","UUID":"c1","ID":"p"}`)
	assert.Contains(t, string(body), "0.1000000000000000055511151231257827")
}

func TestGetMissingItem(t *testing.T) {
	ts := startServer(t)

	resp := ts.roundTrip(t, `{"ACTION":"get","UUID":"c1","ID":"nope"}`)
	assert.Equal(t, models.KindMissingID, resp["error"])
	assert.Contains(t, resp["message"], "nope")
	assert.Equal(t, []string{models.ActionGet}, ts.auditActions(t))
}

func TestGetWithoutID(t *testing.T) {
	ts := startServer(t)

	resp := ts.roundTrip(t, `{"ACTION":"get","UUID":"c1"}`)
	assert.Equal(t, models.KindMissingID, resp["error"])
	assert.Empty(t, ts.auditActions(t))
}

func TestSetWithoutID(t *testing.T) {
	ts := startServer(t)

	resp := ts.roundTrip(t, `{"ACTION":"set","UUID":"c1","value":1}`)
	assert.Equal(t, models.KindMissingID, resp["error"])
	assert.Empty(t, ts.auditActions(t))
}

func TestSetNonStringID(t *testing.T) {
	ts := startServer(t)

	resp := ts.roundTrip(t, `{"ACTION":"set","UUID":"c1","id":5}`)
	assert.Equal(t, models.KindDataError, resp["error"])
	assert.Equal(t, []string{models.ActionSet}, ts.auditActions(t))
}

func TestInvalidJSON(t *testing.T) {
	ts := startServer(t)

	for _, raw := range []string{`{"ACTION": "get",`, `not json at all`, `[1,2,3]`, `null`} {
		t.Run(raw, func(t *testing.T) {
			resp := ts.roundTripInvalid(t, raw)
			assert.Equal(t, models.KindInvalidJSON, resp["error"])
		})
	}
	assert.Empty(t, ts.auditActions(t))
}

// roundTripInvalid half-closes the connection so truncated input ends the request
func (ts *testServer) roundTripInvalid(t *testing.T, raw string) map[string]any {
	t.Helper()
	conn, err := net.Dial("tcp", ts.addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(raw))
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	body, err := io.ReadAll(conn)
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(body, &resp), "response: %s", body)
	return resp
}

func TestUnknownAction(t *testing.T) {
	ts := startServer(t)

	resp := ts.roundTrip(t, `{"ACTION":"delete","UUID":"c1","ID":"x1"}`)
	assert.Equal(t, models.KindUnknownAction, resp["error"])
	assert.Equal(t, "action 'delete' not recognized", resp["message"])
	assert.Empty(t, ts.auditActions(t))
}

func TestMissingActionIsUnknown(t *testing.T) {
	ts := startServer(t)

	resp := ts.roundTrip(t, `{"UUID":"c1"}`)
	assert.Equal(t, models.KindUnknownAction, resp["error"])
}

func TestList(t *testing.T) {
	ts := startServer(t)

	body := ts.roundTripRaw(t, `{"ACTION":"list","UUID":"c1"}`)
	assert.Equal(t, "[]\n", string(body))

	ts.roundTripRaw(t, `{"ACTION":"set","UUID":"c1","id":"b","n":2}`)
	ts.roundTripRaw(t, `{"ACTION":"set","UUID":"c1","id":"a","n":1}`)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(ts.roundTripRaw(t, `{"ACTION":"list","UUID":"c1"}`), &items))
	assert.ElementsMatch(t, []map[string]any{{"id": "a", "n": 1.0}, {"id": "b", "n": 2.0}}, items)
}

func TestRequestSplitAcrossWrites(t *testing.T) {
	ts := startServer(t)

	conn, err := net.Dial("tcp", ts.addr)
	require.NoError(t, err)
	defer conn.Close()

	parts := []string{`{"ACTION":"se`, `t","UUID":"c1",`, `"id":"x1","value"`, `:3.5}`}
	for _, part := range parts {
		_, err := conn.Write([]byte(part))
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	body, err := io.ReadAll(conn)
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, map[string]any{"id": "x1", "value": 3.5}, resp)
}

func TestEmptyConnectionIsIgnored(t *testing.T) {
	ts := startServer(t)

	conn, err := net.Dial("tcp", ts.addr)
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	body, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Empty(t, body)
	conn.Close()

	// The server keeps accepting
	body = ts.roundTripRaw(t, `{"ACTION":"list","UUID":"c1"}`)
	assert.Equal(t, "[]\n", string(body))
}

func TestSubscriberReceivesUpdate(t *testing.T) {
	ts := startServer(t)
	sub := ts.subscribe(t, "obs")

	ts.roundTripRaw(t, `{"ACTION":"set","UUID":"c1","id":"x1","value":3.5}`)

	msg := sub.next(t)
	assert.Equal(t, map[string]any{
		"EVENT": "update",
		"DATA":  map[string]any{"id": "x1", "value": 3.5},
	}, msg)
	assert.Equal(t, []string{models.ActionSubscribe, models.ActionSet}, ts.auditActions(t))
}

func TestEverySubscriberReceivesEachUpdate(t *testing.T) {
	ts := startServer(t)
	subs := []*subscriberConn{ts.subscribe(t, "a"), ts.subscribe(t, "b"), ts.subscribe(t, "c")}

	ts.roundTripRaw(t, `{"ACTION":"set","UUID":"c1","id":"k1","v":1}`)
	ts.roundTripRaw(t, `{"ACTION":"set","UUID":"c1","id":"k2","v":2}`)

	for _, sub := range subs {
		first := sub.next(t)
		second := sub.next(t)
		assert.Equal(t, "k1", first["DATA"].(map[string]any)["id"])
		assert.Equal(t, "k2", second["DATA"].(map[string]any)["id"])
	}
}

func TestFailedSetDoesNotNotify(t *testing.T) {
	ts := startServer(t)
	sub := ts.subscribe(t, "obs")

	resp := ts.roundTrip(t, `{"ACTION":"set","UUID":"c1","id":7}`)
	assert.Equal(t, models.KindDataError, resp["error"])

	sub.expectNothing(t, 200*time.Millisecond)
}

func TestReadsDoNotNotify(t *testing.T) {
	ts := startServer(t)
	sub := ts.subscribe(t, "obs")

	ts.roundTripRaw(t, `{"ACTION":"list","UUID":"c1"}`)
	ts.roundTripRaw(t, `{"ACTION":"get","UUID":"c1","ID":"x"}`)

	sub.expectNothing(t, 200*time.Millisecond)
}

func TestClosedSubscriberIsRemoved(t *testing.T) {
	ts := startServer(t)
	gone := ts.subscribe(t, "gone")
	stay := ts.subscribe(t, "stay")
	require.Equal(t, 2, ts.dispatcher.Stats().Subscribers)

	gone.conn.Close()
	require.Eventually(t, func() bool {
		return ts.dispatcher.Stats().Subscribers == 1
	}, 5*time.Second, 10*time.Millisecond)

	ts.roundTripRaw(t, `{"ACTION":"set","UUID":"c1","id":"x1"}`)
	msg := stay.next(t)
	assert.Equal(t, "update", msg["EVENT"])
}

func TestStats(t *testing.T) {
	ts := startServer(t)
	ts.roundTripRaw(t, `{"ACTION":"list","UUID":"c1"}`)
	ts.roundTripRaw(t, `{"ACTION":"list","UUID":"c1"}`)
	ts.subscribe(t, "obs")

	require.Eventually(t, func() bool {
		stats := ts.dispatcher.Stats()
		return stats.ConnectionsAccepted == 3 && stats.ConnectionsActive == 1
	}, 5*time.Second, 10*time.Millisecond)

	stats := ts.dispatcher.Stats()
	assert.Equal(t, int64(3), stats.Requests)
	assert.Equal(t, 1, stats.Subscribers)
	assert.NotNil(t, ts.dispatcher.Addr())
}

func TestConcurrentClients(t *testing.T) {
	ts := startServer(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := strings.Repeat("k", i+1)
			resp := ts.roundTrip(t, `{"ACTION":"set","UUID":"c1","id":"`+id+`"}`)
			assert.Equal(t, id, resp["id"])
		}(i)
	}
	wg.Wait()

	assert.Len(t, ts.auditActions(t), 20)
}

func TestShutdownClosesSubscribers(t *testing.T) {
	ts := startServer(t)
	sub := ts.subscribe(t, "obs")

	ts.stop(t)

	require.NoError(t, sub.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err := sub.conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

// panickingProxy simulates a handler bug
type panickingProxy struct{ services.DataProxy }

func (panickingProxy) ListItems(ctx context.Context, clientID, sessionID string) ([]models.Item, error) {
	panic("boom")
}

func TestHandlerPanicDoesNotStopServer(t *testing.T) {
	srvs := &services.Services{
		Audit:       nopAudit{},
		Data:        panickingProxy{},
		Subscribers: services.NewSubscriberRegistry(nil, logging.Discard()),
	}
	ts := startWithServices(t, nil, srvs)

	body := ts.roundTripRaw(t, `{"ACTION":"list","UUID":"c1"}`)
	assert.Empty(t, body)

	resp := ts.roundTrip(t, `{"ACTION":"nope"}`)
	assert.Equal(t, models.KindUnknownAction, resp["error"])
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, string, string, string, string) {}
