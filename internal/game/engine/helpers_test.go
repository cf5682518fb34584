package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/palemoky/piramiden/internal/clock/mocks"
	"github.com/palemoky/piramiden/internal/game/card"
	"github.com/palemoky/piramiden/internal/game/pyramid"
)

var t0 = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

func cardOf(r card.Rank, s card.Suit) card.Card {
	return card.Card{Rank: r, Suit: s}
}

// fakeTimers records the armed epochs. Zero means not armed.
type fakeTimers struct {
	t       *testing.T
	review  int
	round   int
	reviewD time.Duration
	roundD  time.Duration
}

func (f *fakeTimers) ArmReview(epoch int, d time.Duration) {
	f.review, f.reviewD = epoch, d
	f.checkExclusive()
}

func (f *fakeTimers) ArmRound(epoch int, d time.Duration) {
	f.round, f.roundD = epoch, d
	f.checkExclusive()
}

func (f *fakeTimers) CancelReview() { f.review = 0 }
func (f *fakeTimers) CancelRound()  { f.round = 0 }

func (f *fakeTimers) checkExclusive() {
	f.t.Helper()
	assert.False(f.t, f.review != 0 && f.round != 0, "review and round timer armed together")
}

type recorded struct {
	player string
	drink  Drink
}

type fakeRecorder struct {
	drinks []recorded
	memory map[string]bool
}

func (r *fakeRecorder) RecordDrink(player string, d Drink) {
	r.drinks = append(r.drinks, recorded{player, d})
}

func (r *fakeRecorder) RecordMemory(player string, ok bool) {
	if r.memory == nil {
		r.memory = make(map[string]bool)
	}
	r.memory[player] = ok
}

type fixture struct {
	g        *Game
	timers   *fakeTimers
	recorder *fakeRecorder
}

// defaultLayout: A holds two sevens, B none. The pyramid has two rows:
// 7♥ (row 2), Q♠ (row 2), A♣ (apex).
func defaultLayout() *pyramid.Layout {
	return &pyramid.Layout{
		Hands: map[string][]card.Card{
			"A": {cardOf(card.Rank7, card.Spade), cardOf(card.RankK, card.Heart), cardOf(card.Rank7, card.Diamond), cardOf(card.Rank2, card.Club)},
			"B": {cardOf(card.Rank3, card.Spade), cardOf(card.Rank3, card.Heart), cardOf(card.Rank4, card.Diamond), cardOf(card.Rank5, card.Club)},
			"C": {cardOf(card.Rank7, card.Club), cardOf(card.Rank7, card.Heart), cardOf(card.RankQ, card.Diamond), cardOf(card.RankQ, card.Club)},
		},
		Cards: []card.Card{cardOf(card.Rank7, card.Heart), cardOf(card.RankQ, card.Spade), cardOf(card.RankA, card.Club)},
		Rows:  2,
	}
}

func newFixture(t *testing.T, players []string, layout *pyramid.Layout, opts Options) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	clk := mocks.NewMockClock(ctrl)
	clk.EXPECT().Now().Return(t0).AnyTimes()

	f := &fixture{
		timers:   &fakeTimers{t: t},
		recorder: &fakeRecorder{},
	}
	f.g = New(players, layout, opts, Deps{Clock: clk, Timers: f.timers, Recorder: f.recorder})
	return f
}

// startedInClaim returns a two-player game on the first card
func startedInClaim(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, []string{"A", "B"}, defaultLayout(), Options{})
	f.g.Start()
	changed(t)(f.g.Ready("A"))
	changed(t)(f.g.Ready("B"))
	return f
}

// changed asserts that an action applied; use as changed(t)(g.Pass("A"))
func changed(t *testing.T) func(bool, error) {
	return func(ok bool, err error) {
		t.Helper()
		assert.NoError(t, err)
		assert.True(t, ok, "expected a state change")
	}
}

// ignored asserts that an action was dropped without an error
func ignored(t *testing.T) func(bool, error) {
	return func(ok bool, err error) {
		t.Helper()
		assert.NoError(t, err)
		assert.False(t, ok, "expected the action to be ignored")
	}
}

// rejected asserts that an action failed validation with want
func rejected(t *testing.T, want error) func(bool, error) {
	return func(ok bool, err error) {
		t.Helper()
		assert.ErrorIs(t, err, want)
		assert.False(t, ok)
	}
}
