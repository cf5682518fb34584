package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/piramiden/internal/config"
	"github.com/palemoky/piramiden/internal/protocol"
	"github.com/palemoky/piramiden/internal/protocol/codec"
	"github.com/palemoky/piramiden/internal/server/storage"
	"github.com/palemoky/piramiden/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(redisAddr string) *config.Config {
	cfg := config.Default()
	cfg.Redis.Addr = redisAddr
	cfg.Server.PublicURL = "https://piramiden.test/"
	cfg.Security.AllowedOrigins = []string{"https://piramiden.test"}
	cfg.Security.BlockedIPs = nil
	cfg.Security.RateLimit.MaxPerSecond = 100
	cfg.Security.RateLimit.MaxPerMinute = 1000
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	ts.Config.Handler.ServeHTTP(w, req)
	res := w.Result()
	t.Cleanup(func() { _ = res.Body.Close() })
	return res, w.Body.Bytes()
}

func TestNewServer_RedisUnreachable(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewServer(testConfig(addr))
	assert.ErrorContains(t, err, "unreachable")
}

func TestNewServer_DropsStaleRooms(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("room:OLD1", `{"code":"OLD1"}`))
	mr.HSet("drinks:OLD1", "Anna", "4")

	s, err := NewServer(testConfig(mr.Addr()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.redis.Close() })

	assert.False(t, mr.Exists("room:OLD1"))
	assert.False(t, mr.Exists("drinks:OLD1"))
}

func TestServer_RegisterUnregister_Concurrency(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, testConfig(""))

	var wg sync.WaitGroup
	count := 100

	wg.Add(count)
	for i := range count {
		go func() {
			defer wg.Done()
			s.semaphore <- struct{}{}
			s.registerClient(&Client{ID: fmt.Sprint(i)})
		}()
	}
	wg.Wait()
	assert.Equal(t, count, s.GetOnlineCount())
	assert.Len(t, s.semaphore, count)

	wg.Add(count)
	for i := range count {
		go func() {
			defer wg.Done()
			s.unregisterClient(&Client{ID: fmt.Sprint(i)})
		}()
	}
	wg.Wait()
	assert.Zero(t, s.GetOnlineCount())
	assert.Empty(t, s.semaphore, "slots are released")
}

func TestServer_HandleHealth(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, testConfig(""))
	_, _, err := s.rooms.Create(testutil.NewSimpleClient("c1", ""), "Anna")
	require.NoError(t, err)

	res, body := get(t, ts, "/health")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var health struct {
		Status      string `json:"status"`
		Rooms       int    `json:"rooms"`
		ActiveGames int    `json:"activeGames"`
		Maintenance bool   `json:"maintenance"`
	}
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.Rooms)
	assert.Zero(t, health.ActiveGames)
	assert.False(t, health.Maintenance)
}

func TestServer_RoomQR(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, testConfig(""))
	room, _, err := s.rooms.Create(testutil.NewSimpleClient("c1", ""), "Anna")
	require.NoError(t, err)

	res, body := get(t, ts, "/rooms/"+strings.ToLower(room.Code)+"/qr")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(body), "\x89PNG"), "png signature")

	res, _ = get(t, ts, "/rooms/ZZZZ/qr")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestServer_RoomDrinks(t *testing.T) {
	t.Parallel()

	t.Run("without redis", func(t *testing.T) {
		t.Parallel()
		_, ts := newTestServer(t, testConfig(""))
		res, _ := get(t, ts, "/rooms/ABCD/drinks")
		assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	})

	t.Run("with redis", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		_, ts := newTestServer(t, testConfig(mr.Addr()))

		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		store := storage.NewRedisStore(rdb)
		ctx := context.Background()
		require.NoError(t, store.RecordDrink(ctx, "ABCD", "Bram", storage.DrinkRecord{Sips: 3}))
		require.NoError(t, store.RecordDrink(ctx, "ABCD", "Anna", storage.DrinkRecord{Fundi: true}))

		res, body := get(t, ts, "/rooms/abcd/drinks")
		require.Equal(t, http.StatusOK, res.StatusCode)

		var out struct {
			Room    string                 `json:"room"`
			Players []storage.PlayerDrinks `json:"players"`
		}
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, "ABCD", out.Room)
		require.Len(t, out.Players, 2)
		assert.Equal(t, "Anna", out.Players[0].Player, "fundis rank first")
		assert.Equal(t, 3, out.Players[1].Sips)

		res, body = get(t, ts, "/rooms/NONE/drinks")
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, string(body), `"players":[]`)
	})
}

func TestServer_MaintenanceMode(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, testConfig(""))
	assert.False(t, s.IsMaintenanceMode())

	s.EnterMaintenanceMode()
	assert.True(t, s.IsMaintenanceMode())

	_, res, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestServer_Admission(t *testing.T) {
	t.Parallel()

	cfg := testConfig("")
	cfg.Security.BlockedIPs = []string{"203.0.113.7"}
	_, ts := newTestServer(t, cfg)

	tests := []struct {
		name   string
		header http.Header
		status int
	}{
		{"blocked ip", http.Header{"X-Forwarded-For": {"203.0.113.7"}}, http.StatusForbidden},
		{"foreign origin", http.Header{"Origin": {"https://evil.test"}}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res, err := websocket.DefaultDialer.Dial(wsURL(ts), tt.header)
			require.Error(t, err)
			require.NotNil(t, res)
			assert.Equal(t, tt.status, res.StatusCode)
		})
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), http.Header{"Origin": {"https://piramiden.test"}})
	require.NoError(t, err)
	_ = conn.Close()
}

func TestServer_AllowedIPs(t *testing.T) {
	t.Parallel()

	cfg := testConfig("")
	cfg.Security.AllowedIPs = []string{"198.51.100.4"}
	_, ts := newTestServer(t, cfg)

	_, res, err := websocket.DefaultDialer.Dial(wsURL(ts), http.Header{"X-Forwarded-For": {"198.51.100.5"}})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), http.Header{"X-Forwarded-For": {"198.51.100.4"}})
	require.NoError(t, err)
	_ = conn.Close()
}

func TestServer_ConnectionLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig("")
	cfg.Server.MaxConnections = 1
	s, ts := newTestServer(t, cfg)

	first := dial(t, ts)
	readUntil(t, first, protocol.MsgConnected)

	_, res, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	// the slot frees up when the first client leaves
	_ = first.Close()
	require.Eventually(t, func() bool { return s.GetOnlineCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	second := dial(t, ts)
	readUntil(t, second, protocol.MsgConnected)
}

func TestWebSocket_TextAndBinaryFraming(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, testConfig(""))

	anna := dial(t, ts)
	connected := readUntil(t, anna, protocol.MsgConnected)
	var hello protocol.ConnectedPayload
	require.NoError(t, json.Unmarshal(connected.msg.Payload, &hello))
	assert.NotEmpty(t, hello.ConnID)

	send(t, anna, codec.Text, protocol.MsgRoomCreate, "1", protocol.CreateRoomPayload{Name: "Anna"})
	ack := readAck(t, anna)
	require.True(t, ack.OK, ack.Error)
	assert.Equal(t, "1", ack.ID)
	code := ack.Code

	bram := dial(t, ts)
	readUntil(t, bram, protocol.MsgConnected)
	send(t, bram, codec.Binary, protocol.MsgRoomJoin, "j", protocol.JoinRoomPayload{Code: code, Name: "Bram"})

	status := readUntil(t, bram, protocol.MsgRoomStatus)
	assert.Equal(t, websocket.BinaryMessage, status.kind, "replies follow the client's framing")
	var rs protocol.RoomStatusPayload
	require.NoError(t, json.Unmarshal(status.msg.Payload, &rs))
	assert.Equal(t, []string{"Anna", "Bram"}, rs.Players)

	joined := readAck(t, bram)
	assert.True(t, joined.OK)

	// anna still talks JSON
	update := readUntil(t, anna, protocol.MsgRoomStatus)
	assert.Equal(t, websocket.TextMessage, update.kind)

	assert.Equal(t, 2, s.GetOnlineCount())
}

func TestWebSocket_BadFrames(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, testConfig(""))
	conn := dial(t, ts)
	readUntil(t, conn, protocol.MsgConnected)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	errMsg := readUntil(t, conn, protocol.MsgError)
	var payload protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(errMsg.msg.Payload, &payload))
	assert.Equal(t, protocol.ErrCodeInvalidMsg, payload.Code)

	// the connection survives
	send(t, conn, codec.Text, protocol.MsgPing, "", protocol.PingPayload{Timestamp: 7})
	pong := readUntil(t, conn, protocol.MsgPong)
	assert.Contains(t, string(pong.msg.Payload), `"clientTimestamp":7`)
}

func TestWebSocket_DisconnectLeavesRoom(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, testConfig(""))
	conn := dial(t, ts)
	readUntil(t, conn, protocol.MsgConnected)

	send(t, conn, codec.Text, protocol.MsgRoomCreate, "1", protocol.CreateRoomPayload{Name: "Anna"})
	require.True(t, readAck(t, conn).OK)
	require.Equal(t, 1, s.rooms.RoomCount())

	_ = conn.Close()

	assert.Eventually(t, func() bool {
		return s.rooms.RoomCount() == 0 && s.GetOnlineCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

// --- websocket helpers ---

type inbound struct {
	kind int
	msg  *protocol.Message
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, f codec.Framing, typ protocol.MessageType, id string, payload any) {
	t.Helper()
	msg := protocol.MustNewMessage(typ, payload)
	msg.ID = id
	data, err := codec.Encode(msg, f)
	require.NoError(t, err)

	kind := websocket.TextMessage
	if f == codec.Binary {
		kind = websocket.BinaryMessage
	}
	require.NoError(t, conn.WriteMessage(kind, data))
}

// readUntil skips frames until one of type typ arrives
func readUntil(t *testing.T, conn *websocket.Conn, typ protocol.MessageType) inbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", typ)

		f := codec.Text
		if kind == websocket.BinaryMessage {
			f = codec.Binary
		}
		msg, err := codec.Decode(data, f)
		require.NoError(t, err)
		if msg.Type == typ {
			return inbound{kind: kind, msg: msg}
		}
	}
}

func readAck(t *testing.T, conn *websocket.Conn) protocol.AckPayload {
	t.Helper()
	in := readUntil(t, conn, protocol.MsgAck)
	var ack protocol.AckPayload
	require.NoError(t, json.Unmarshal(in.msg.Payload, &ack))
	return ack
}
