// Package engine runs the round state machine of one pyramid game.
//
// A Game is not safe for concurrent use; its owner (the room) serialises
// player actions and timer callbacks. Mutating methods return whether state
// changed. Requests that are well formed but arrive in the wrong phase, from
// the wrong player or twice are ignored and report (false, nil); malformed
// requests return a *apperrors.GameError and change nothing.
package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/palemoky/piramiden/internal/clock"
	"github.com/palemoky/piramiden/internal/game/card"
	"github.com/palemoky/piramiden/internal/game/pyramid"
	"github.com/palemoky/piramiden/internal/logger"
)

const (
	defaultReviewTimeout = 90 * time.Second
	defaultRoundTimeout  = 30 * time.Second
	defaultLogLimit      = 100
	defaultLogTail       = 20
)

// Options tunes a game
type Options struct {
	ReviewTimeout time.Duration
	RoundTimeout  time.Duration
	LogLimit      int // events kept
	LogTail       int // events included in a snapshot
}

func (o *Options) applyDefaults() {
	if o.ReviewTimeout <= 0 {
		o.ReviewTimeout = defaultReviewTimeout
	}
	if o.RoundTimeout <= 0 {
		o.RoundTimeout = defaultRoundTimeout
	}
	if o.LogLimit <= 0 {
		o.LogLimit = defaultLogLimit
	}
	if o.LogTail <= 0 {
		o.LogTail = defaultLogTail
	}
}

// Deps are the collaborators of a game. Nil fields get no-op defaults.
type Deps struct {
	Clock    clock.Clock
	Timers   Timers
	Recorder Recorder
	Logger   *zerolog.Logger
}

// Game is the state of one pyramid game
type Game struct {
	players []string // live roster in join order

	hands         map[string][]card.Card
	pyramid       []card.Card
	rows          int
	revealedIndex int
	handLocked    bool

	phase    Phase
	reviewID int
	roundID  int
	review   *ReviewState
	round    *Round
	memory   MemoryState
	events   []string

	opts     Options
	clock    clock.Clock
	timers   Timers
	recorder Recorder
	log      zerolog.Logger
}

// New creates a game for players from a dealt layout. Call Start to enter review.
func New(players []string, layout *pyramid.Layout, opts Options, deps Deps) *Game {
	opts.applyDefaults()

	g := &Game{
		players:       slices.Clone(players),
		hands:         layout.Hands,
		pyramid:       layout.Cards,
		rows:          layout.Rows,
		revealedIndex: -1,
		memory:        MemoryState{Submitted: make(map[string]bool, len(players))},
		opts:          opts,
		clock:         deps.Clock,
		timers:        deps.Timers,
		recorder:      deps.Recorder,
	}
	if g.clock == nil {
		g.clock = &clock.DefaultClock{}
	}
	if g.timers == nil {
		g.timers = noopTimers{}
	}
	if g.recorder == nil {
		g.recorder = noopRecorder{}
	}
	if deps.Logger != nil {
		g.log = *deps.Logger
	} else {
		g.log = *logger.L()
	}
	return g
}

// Start enters the review phase
func (g *Game) Start() {
	g.startReview()
}

// Phase returns the current phase
func (g *Game) Phase() Phase {
	return g.phase
}

// RevealedIndex returns the index of the current pyramid card, -1 before the first reveal
func (g *Game) RevealedIndex() int {
	return g.revealedIndex
}

// PyramidTotal returns the number of pyramid cards
func (g *Game) PyramidTotal() int {
	return len(g.pyramid)
}

// Players returns the live roster
func (g *Game) Players() []string {
	return slices.Clone(g.players)
}

// Finished reports whether the game reached its terminal phase
func (g *Game) Finished() bool {
	return g.phase == PhaseMemory
}

// RemovePlayer drops name from the roster. Anything the player already
// recorded stays; they no longer gate readiness, decisions or drink acks,
// and claims waiting on them are forfeited.
func (g *Game) RemovePlayer(name string) bool {
	i := slices.Index(g.players, name)
	if i < 0 {
		return false
	}
	g.players = slices.Delete(g.players, i, i+1)

	if len(g.players) == 0 {
		g.timers.CancelReview()
		g.timers.CancelRound()
		return true
	}

	g.forfeitClaims(name)
	g.advance()
	return true
}

func (g *Game) isPlayer(name string) bool {
	return slices.Contains(g.players, name)
}

func (g *Game) current() (card.Card, int, bool) {
	if g.revealedIndex < 0 || g.revealedIndex >= len(g.pyramid) {
		return card.Card{}, 0, false
	}
	return g.pyramid[g.revealedIndex], pyramid.RowOf(g.rows, g.revealedIndex), true
}

// baseDrink is the single-rate obligation for the current card
func (g *Game) baseDrink(mult int, double bool) Drink {
	_, row, _ := g.current()
	if pyramid.IsApex(row) {
		return Drink{Fundi: true, Double: double, Mult: mult}
	}
	return Drink{Sips: row, Double: double, Mult: mult}
}

func (g *Game) addEvent(format string, args ...any) {
	g.events = append(g.events, fmt.Sprintf(format, args...))
	if over := len(g.events) - g.opts.LogLimit; over > 0 {
		g.events = slices.Delete(g.events, 0, over)
	}
}
