package engine

import (
	"github.com/palemoky/piramiden/internal/apperrors"
	"github.com/palemoky/piramiden/internal/game/card"
	"github.com/palemoky/piramiden/internal/game/pyramid"
)

// SubmitMemory checks name's guesses of their own hand, slot by slot.
// The guesses are not kept; only the outcome is logged and recorded.
func (g *Game) SubmitMemory(name string, guesses []string) (bool, error) {
	if g.phase != PhaseMemory || !g.isPlayer(name) || g.memory.Submitted[name] {
		return false, nil
	}
	if len(guesses) != pyramid.HandSize {
		return false, apperrors.ErrMalformedGuesses
	}

	ok := card.MatchGuesses(g.hands[name], guesses)
	if ok {
		g.addEvent("%s: eindtest OK ✅", name)
	} else {
		g.addEvent("%s: fout ❌ → FUNDI", name)
	}
	g.memory.Submitted[name] = true
	g.recorder.RecordMemory(name, ok)

	return true, nil
}
