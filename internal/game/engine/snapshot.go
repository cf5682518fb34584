package engine

import (
	"slices"

	"github.com/palemoky/piramiden/internal/game/pyramid"
)

// Snapshot is the game as one player may see it
type Snapshot struct {
	Phase         Phase        `json:"phase"`
	Players       []string     `json:"players"`
	PyramidRows   int          `json:"pyramidRows"`
	PyramidTotal  int          `json:"pyramidTotal"`
	RevealedIndex int          `json:"revealedIndex"`
	Current       *CurrentCard `json:"current"`
	HandLocked    bool         `json:"handLocked"`
	YourHand      []HandCard   `json:"yourHand"`
	Review        *ReviewView  `json:"review"`
	Round         *RoundView   `json:"round"`
	Log           []string     `json:"log"`
	Memory        MemoryView   `json:"memory"`
}

// CurrentCard is the one revealed pyramid card
type CurrentCard struct {
	Value string `json:"value"`
	Suit  string `json:"suit"`
	Row   int    `json:"row"`
	IsTop bool   `json:"isTop"`
	Base  string `json:"base"`
}

// HandCard is a hand slot, opaque once the hand is locked
type HandCard struct {
	Value  string `json:"value,omitempty"`
	Suit   string `json:"suit,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

// ReviewView is the viewer's part of the review phase
type ReviewView struct {
	EndsAt       int64 `json:"endsAt"` // unix ms
	YourReady    bool  `json:"yourReady"`
	ReadyCount   int   `json:"readyCount"`
	TotalPlayers int   `json:"totalPlayers"`
}

// RoundView is the viewer's part of the current round
type RoundView struct {
	PassEndsAt     int64       `json:"passEndsAt"` // unix ms
	YourDecision   *Decision   `json:"yourDecision"`
	Claims         []ClaimView `json:"claims"`
	YourDrinkTasks []string    `json:"yourDrinkTasks"`
	YourDrinkAck   bool        `json:"yourDrinkAck"`
}

// ClaimView is a claim with the proof picks only shown to its claimer
type ClaimView struct {
	Claimer    string      `json:"claimer"`
	Target     string      `json:"target"`
	Mult       int         `json:"mult"`
	Status     ClaimStatus `json:"status"`
	ProofPicks []int       `json:"proofPicks"`
}

// MemoryView is the viewer's part of the memory phase
type MemoryView struct {
	YourSubmitted  bool `json:"yourSubmitted"`
	SubmittedCount int  `json:"submittedCount"`
	TotalPlayers   int  `json:"totalPlayers"`
}

// Snapshot projects the game for viewer. It never mutates the game and
// shares no memory with it. Other hands, other players' proof picks and
// unrevealed pyramid cards are never included.
func (g *Game) Snapshot(viewer string) Snapshot {
	s := Snapshot{
		Phase:         g.phase,
		Players:       slices.Clone(g.players),
		PyramidRows:   g.rows,
		PyramidTotal:  len(g.pyramid),
		RevealedIndex: g.revealedIndex,
		HandLocked:    g.handLocked,
		YourHand:      g.handView(viewer),
		Log:           g.logTail(),
		Memory: MemoryView{
			YourSubmitted:  g.memory.Submitted[viewer],
			SubmittedCount: g.countLive(g.memory.Submitted),
			TotalPlayers:   len(g.players),
		},
	}
	if s.Players == nil {
		s.Players = []string{}
	}

	if c, row, ok := g.current(); ok {
		s.Current = &CurrentCard{
			Value: c.Rank.String(),
			Suit:  c.Suit.Letter(),
			Row:   row,
			IsTop: pyramid.IsApex(row),
			Base:  g.baseDrink(1, false).String(),
		}
	}

	if g.review != nil {
		s.Review = &ReviewView{
			EndsAt:       g.review.EndsAt.UnixMilli(),
			YourReady:    g.review.Ready[viewer],
			ReadyCount:   g.countLive(g.review.Ready),
			TotalPlayers: len(g.players),
		}
	}

	if g.round != nil {
		s.Round = g.roundView(viewer)
	}
	return s
}

func (g *Game) handView(viewer string) []HandCard {
	hand := g.hands[viewer]
	out := make([]HandCard, len(hand))
	visible := g.phase == PhaseReview || !g.handLocked
	for i, c := range hand {
		if visible {
			out[i] = HandCard{Value: c.Rank.String(), Suit: c.Suit.Letter()}
		} else {
			out[i] = HandCard{Hidden: true}
		}
	}
	return out
}

func (g *Game) roundView(viewer string) *RoundView {
	r := g.round
	v := &RoundView{
		PassEndsAt: r.PassEndsAt.UnixMilli(),
		Claims:     make([]ClaimView, len(r.Claims)),
	}

	if d, ok := r.Decisions[viewer]; ok && d != Undecided {
		v.YourDecision = &d
	}

	for i, c := range r.Claims {
		picks := []int{}
		if c.Claimer == viewer {
			picks = append(picks, c.ProofPicks...)
		}
		v.Claims[i] = ClaimView{
			Claimer:    c.Claimer,
			Target:     c.Target,
			Mult:       c.Mult,
			Status:     c.Status,
			ProofPicks: picks,
		}
	}

	tasks := r.Drinks[viewer]
	v.YourDrinkTasks = make([]string, len(tasks))
	for i, d := range tasks {
		v.YourDrinkTasks[i] = d.String()
	}
	v.YourDrinkAck = len(tasks) == 0 || r.DrinkAck[viewer]
	return v
}

func (g *Game) logTail() []string {
	from := max(len(g.events)-g.opts.LogTail, 0)
	return append([]string{}, g.events[from:]...)
}

// countLive counts the flags set for players still in the game
func (g *Game) countLive(flags map[string]bool) int {
	n := 0
	for _, p := range g.players {
		if flags[p] {
			n++
		}
	}
	return n
}
