package engine

import (
	"strings"

	"github.com/palemoky/piramiden/internal/game/pyramid"
)

func (g *Game) startReview() {
	g.timers.CancelReview()

	g.phase = PhaseReview
	g.reviewID++
	g.review = &ReviewState{
		EndsAt: g.clock.Now().Add(g.opts.ReviewTimeout),
		Ready:  make(map[string]bool, len(g.players)),
	}
	for _, p := range g.players {
		g.review.Ready[p] = false
	}
	g.timers.ArmReview(g.reviewID, g.opts.ReviewTimeout)

	g.log.Debug().Int("reviewId", g.reviewID).Msg("review started")
}

// Ready marks name as done memorising their hand
func (g *Game) Ready(name string) (bool, error) {
	if g.phase != PhaseReview || g.review == nil || !g.isPlayer(name) || g.review.Ready[name] {
		return false, nil
	}
	g.review.Ready[name] = true

	g.advance()
	return true, nil
}

// ReviewTimeout handles the review timer armed with epoch. A stale epoch or
// a phase that already moved on is a no-op.
func (g *Game) ReviewTimeout(epoch int) bool {
	if g.phase != PhaseReview || epoch != g.reviewID {
		return false
	}
	g.log.Debug().Int("reviewId", epoch).Msg("review timed out")
	g.revealNext()
	g.advance()
	return true
}

// RoundTimeout handles the round timer armed with epoch: every live player
// without a decision passes.
func (g *Game) RoundTimeout(epoch int) bool {
	if g.phase != PhaseClaim || epoch != g.roundID || g.round == nil {
		return false
	}

	var late []string
	for _, p := range g.players {
		if g.round.Decisions[p] == Undecided {
			g.round.Decisions[p] = Passed
			late = append(late, p)
		}
	}
	if len(late) > 0 {
		g.addEvent("⏱️ Tijd is op: %s past", strings.Join(late, ", "))
	}
	g.log.Debug().Int("roundId", epoch).Strs("autoPassed", late).Msg("round timed out")

	g.advance()
	return true
}

// advance applies every transition whose condition already holds, so that
// empty phases collapse in one step.
func (g *Game) advance() {
	if len(g.players) == 0 {
		return
	}
	for g.step() {
	}
}

func (g *Game) step() bool {
	switch g.phase {
	case PhaseReview:
		if g.review == nil || !g.allReady() {
			return false
		}
		g.revealNext()
	case PhaseClaim:
		if !g.allDecided() {
			return false
		}
		g.timers.CancelRound()
		g.phase = PhaseResolve
	case PhaseResolve:
		if !g.allClaimsResolved() {
			return false
		}
		g.phase = PhaseDrink
	case PhaseDrink:
		if !g.allDrinksAcked() {
			return false
		}
		g.revealNext()
	default:
		return false
	}
	return true
}

// revealNext turns the next pyramid card or, after the last one, enters memory
func (g *Game) revealNext() {
	g.review = nil
	if g.revealedIndex >= len(g.pyramid)-1 {
		g.enterMemory()
		return
	}

	g.revealedIndex++
	g.handLocked = true

	g.round = &Round{
		Decisions:  make(map[string]Decision, len(g.players)),
		PassEndsAt: g.clock.Now().Add(g.opts.RoundTimeout),
		Drinks:     make(map[string][]Drink),
		DrinkAck:   make(map[string]bool),
	}
	for _, p := range g.players {
		g.round.Decisions[p] = Undecided
	}
	g.phase = PhaseClaim
	g.roundID++

	g.timers.CancelReview()
	g.timers.CancelRound()
	g.timers.ArmRound(g.roundID, g.opts.RoundTimeout)

	c, row, _ := g.current()
	base := g.baseDrink(1, false)
	g.addEvent("Kaart %d/%d: %s (%s)", g.revealedIndex+1, len(g.pyramid), c, base)
	g.log.Debug().Int("roundId", g.roundID).Int("index", g.revealedIndex).Int("row", row).Msg("card revealed")
}

func (g *Game) enterMemory() {
	g.timers.CancelReview()
	g.timers.CancelRound()

	g.phase = PhaseMemory
	g.round = nil
	g.review = nil
	g.addEvent("Piramide klaar! Eindtest: noem je %d kaarten.", pyramid.HandSize)
	g.log.Debug().Msg("memory phase")
}

func (g *Game) allReady() bool {
	for _, p := range g.players {
		if !g.review.Ready[p] {
			return false
		}
	}
	return true
}

func (g *Game) allDecided() bool {
	for _, p := range g.players {
		if g.round.Decisions[p] == Undecided {
			return false
		}
	}
	return true
}

func (g *Game) allClaimsResolved() bool {
	for _, c := range g.round.Claims {
		if c.Status != Resolved {
			return false
		}
	}
	return true
}

// allDrinksAcked only looks at live players that owe something this round
func (g *Game) allDrinksAcked() bool {
	for _, p := range g.players {
		if len(g.round.Drinks[p]) > 0 && !g.round.DrinkAck[p] {
			return false
		}
	}
	return true
}
