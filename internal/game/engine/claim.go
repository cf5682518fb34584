package engine

import (
	"slices"

	"github.com/palemoky/piramiden/internal/apperrors"
	"github.com/palemoky/piramiden/internal/game/card"
)

// Claim files a claim by name against target for the current card
func (g *Game) Claim(name string, mult int, target string) (bool, error) {
	if g.phase != PhaseClaim || !g.isPlayer(name) || g.round.Decisions[name] != Undecided {
		return false, nil
	}
	if mult < 1 || mult > MaxMultiplier {
		return false, apperrors.ErrInvalidMultiplier
	}
	if target == name {
		return false, apperrors.ErrSelfTarget
	}
	if !g.isPlayer(target) {
		return false, apperrors.ErrUnknownPlayer
	}

	g.round.Decisions[name] = Claimed
	g.round.Claims = append(g.round.Claims, &Claim{
		Claimer: name,
		Target:  target,
		Mult:    mult,
		Status:  PendingBelief,
	})
	g.log.Debug().Str("claimer", name).Str("target", target).Int("mult", mult).Msg("claim filed")

	g.advance()
	return true, nil
}

// Pass records that name does not claim the current card
func (g *Game) Pass(name string) (bool, error) {
	if g.phase != PhaseClaim || !g.isPlayer(name) || g.round.Decisions[name] != Undecided {
		return false, nil
	}
	g.round.Decisions[name] = Passed

	g.advance()
	return true, nil
}

// Believe lets the target of claim idx accept it (believe) or demand proof
func (g *Game) Believe(name string, idx int, believe bool) (bool, error) {
	if g.phase != PhaseResolve {
		return false, nil
	}
	c, err := g.claimAt(idx)
	if err != nil {
		return false, err
	}
	if c.Target != name || c.Status != PendingBelief || !g.isPlayer(name) {
		return false, nil
	}

	if believe {
		d := g.baseDrink(c.Mult, false)
		g.addDrink(c.Target, d)
		g.addEvent("%s moet drinken: %s (geloofde %s)", c.Target, d, c.Claimer)
		c.Status = Resolved
	} else {
		c.Status = AwaitingProof
		c.ProofPicks = nil
		g.addEvent("%s gelooft %s niet: bewijs!", c.Target, c.Claimer)
	}

	g.advance()
	return true, nil
}

// ProofPick lets the claimer of claim idx reveal one hand slot as proof.
// Once the claim's multiplier is reached the proof is judged.
func (g *Game) ProofPick(name string, idx, slot int) (bool, error) {
	if g.phase != PhaseResolve {
		return false, nil
	}
	c, err := g.claimAt(idx)
	if err != nil {
		return false, err
	}
	if c.Claimer != name || c.Status != AwaitingProof || !g.isPlayer(name) {
		return false, nil
	}
	if slot < 0 || slot >= len(g.hands[name]) {
		return false, apperrors.ErrInvalidCardIndex
	}
	if slices.Contains(c.ProofPicks, slot) {
		return false, nil
	}

	c.ProofPicks = append(c.ProofPicks, slot)
	if len(c.ProofPicks) >= c.Mult {
		g.judgeProof(c)
	}

	g.advance()
	return true, nil
}

// judgeProof resolves a doubted claim: the target drinks double when every
// picked card matches the current rank, the claimer otherwise.
func (g *Game) judgeProof(c *Claim) {
	cur, _, _ := g.current()
	d := g.baseDrink(c.Mult, true)

	ok := len(c.ProofPicks) == c.Mult && card.AllRank(g.hands[c.Claimer], c.ProofPicks, cur.Rank)
	if ok {
		g.addDrink(c.Target, d)
		g.addEvent("%s moet dubbel drinken: %s (bewijs klopt van %s)", c.Target, d, c.Claimer)
	} else {
		g.addDrink(c.Claimer, d)
		g.addEvent("%s moet dubbel drinken: %s (bewijs faalt tegen %s)", c.Claimer, d, c.Target)
	}
	c.Status = Resolved
}

// forfeitClaims closes the claims that wait on a player who left: an
// unanswered target counts as believing, a claimer who owes proof fails it.
func (g *Game) forfeitClaims(name string) {
	if g.round == nil || g.phase == PhaseMemory {
		return
	}
	for _, c := range g.round.Claims {
		switch {
		case c.Status == PendingBelief && c.Target == name:
			d := g.baseDrink(c.Mult, false)
			g.addDrink(c.Target, d)
			g.addEvent("%s is weg en moet drinken: %s (geloofde %s)", c.Target, d, c.Claimer)
			c.Status = Resolved
		case c.Status == AwaitingProof && c.Claimer == name:
			d := g.baseDrink(c.Mult, true)
			g.addDrink(c.Claimer, d)
			g.addEvent("%s is weg en moet dubbel drinken: %s (geen bewijs tegen %s)", c.Claimer, d, c.Target)
			c.Status = Resolved
		}
	}
}

func (g *Game) claimAt(idx int) (*Claim, error) {
	if g.round == nil || idx < 0 || idx >= len(g.round.Claims) {
		return nil, apperrors.ErrUnknownClaim
	}
	return g.round.Claims[idx], nil
}
