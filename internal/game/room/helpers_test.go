package room

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/palemoky/piramiden/internal/game/engine"
	"github.com/palemoky/piramiden/internal/protocol"
	"github.com/palemoky/piramiden/internal/testutil"
)

type env struct {
	dir   *Directory
	sched *testutil.ManualScheduler
}

func newEnv(t *testing.T, opts Options) *env {
	t.Helper()
	sched := testutil.NewManualScheduler()
	opts.Scheduler = sched
	if opts.NewRand == nil {
		opts.NewRand = func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }
	}
	return &env{dir: NewDirectory(opts), sched: sched}
}

// lobby creates a room hosted by the first name and joins the others
func (e *env) lobby(t *testing.T, names ...string) (*Room, []*testutil.SimpleClient) {
	t.Helper()
	clients := make([]*testutil.SimpleClient, len(names))
	for i, n := range names {
		clients[i] = testutil.NewSimpleClient("conn-"+n, "")
	}

	room, _, err := e.dir.Create(clients[0], names[0])
	require.NoError(t, err)
	for i := 1; i < len(names); i++ {
		_, _, err := e.dir.Join(clients[i], room.Code, names[i])
		require.NoError(t, err)
	}
	return room, clients
}

// started votes until the game starts
func (e *env) started(t *testing.T, names ...string) (*Room, []*testutil.SimpleClient) {
	t.Helper()
	room, clients := e.lobby(t, names...)
	for _, c := range clients {
		require.NoError(t, e.dir.ToggleStartVote(c))
		if room.game != nil {
			break
		}
	}
	require.NotNil(t, room.game, "game did not start")
	return room, clients
}

func lastState(t *testing.T, c *testutil.SimpleClient) engine.Snapshot {
	t.Helper()
	msg := c.Last(protocol.MsgGameState)
	require.NotNil(t, msg, "no game:state for %s", c.GetName())
	var snap engine.Snapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	return snap
}

func lastStatus(t *testing.T, c *testutil.SimpleClient) protocol.RoomStatusPayload {
	t.Helper()
	msg := c.Last(protocol.MsgRoomStatus)
	require.NotNil(t, msg, "no room:status for %s", c.GetName())
	var status protocol.RoomStatusPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &status))
	return status
}

func pass(g *engine.Game, name string) (bool, error)  { return g.Pass(name) }
func ready(g *engine.Game, name string) (bool, error) { return g.Ready(name) }
