// Package room keeps the live rooms of the server and runs one game per room.
//
// A Room serialises everything that touches its game behind its own mutex:
// player actions, disconnects and timer callbacks. Membership and vote
// changes push the room status; every game change pushes one snapshot per
// member.
package room

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/palemoky/piramiden/internal/clock"
	"github.com/palemoky/piramiden/internal/game/engine"
	"github.com/palemoky/piramiden/internal/server/storage"
	"github.com/palemoky/piramiden/internal/types"
)

const (
	roomCodeLength = 4
	roomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	defaultMinPlayers = 2
	defaultMaxPlayers = 12
)

// Store mirrors rooms and records drink tallies. Calls are fire-and-forget.
type Store interface {
	SaveRoom(ctx context.Context, code string, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, code string) error
	RecordDrink(ctx context.Context, code, player string, d storage.DrinkRecord) error
	RecordMemory(ctx context.Context, code, player string, ok bool) error
}

// Options configures a Directory. Zero values get defaults.
type Options struct {
	Store      Store // nil disables mirroring
	Scheduler  clock.Scheduler
	Clock      clock.Clock
	NewRand    func() *rand.Rand // one source per game
	Game       engine.Options
	MinPlayers int
	MaxPlayers int
}

func (o *Options) applyDefaults() {
	if o.Scheduler == nil {
		o.Scheduler = clock.RealScheduler{}
	}
	if o.Clock == nil {
		o.Clock = &clock.DefaultClock{}
	}
	if o.NewRand == nil {
		o.NewRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	if o.MinPlayers <= 0 {
		o.MinPlayers = defaultMinPlayers
	}
	if o.MaxPlayers <= 0 {
		o.MaxPlayers = defaultMaxPlayers
	}
}

// Room is one lobby and, once started, its game
type Room struct {
	Code      string
	CreatedAt time.Time

	host    string
	players []string                         // join order
	members map[string]types.ClientInterface // by name
	voters  []string                         // vote order
	started bool
	closed  bool
	game    *engine.Game

	reviewTimer clock.Timer
	roundTimer  clock.Timer
	mirror      *mirror // nil without a store

	dir *Directory
	log zerolog.Logger
	mu  sync.Mutex
}

// Directory indexes the live rooms by code
type Directory struct {
	opts  Options
	rooms map[string]*Room
	mu    sync.RWMutex
}

// NewDirectory creates an empty directory
func NewDirectory(opts Options) *Directory {
	opts.applyDefaults()
	return &Directory{
		opts:  opts,
		rooms: make(map[string]*Room),
	}
}
