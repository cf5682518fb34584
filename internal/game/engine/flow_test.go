package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_EntersReview(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"A", "B"}, defaultLayout(), Options{})
	f.g.Start()

	assert.Equal(t, PhaseReview, f.g.Phase())
	assert.Equal(t, 1, f.g.reviewID)
	assert.Equal(t, 1, f.timers.review)
	assert.Equal(t, 90*time.Second, f.timers.reviewD)
	assert.Zero(t, f.timers.round)
	assert.Equal(t, -1, f.g.RevealedIndex())
	assert.False(t, f.g.handLocked)
	assert.Equal(t, map[string]bool{"A": false, "B": false}, f.g.review.Ready)
	assert.Equal(t, t0.Add(90*time.Second), f.g.review.EndsAt)
}

func TestReady_AllReadyRevealsFirstCard(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"A", "B"}, defaultLayout(), Options{})
	f.g.Start()

	changed(t)(f.g.Ready("A"))
	assert.Equal(t, PhaseReview, f.g.Phase())
	ignored(t)(f.g.Ready("A"))
	ignored(t)(f.g.Ready("nobody"))

	changed(t)(f.g.Ready("B"))
	assert.Equal(t, PhaseClaim, f.g.Phase())
	assert.Equal(t, 0, f.g.RevealedIndex())
	assert.True(t, f.g.handLocked)
	assert.Nil(t, f.g.review)
	assert.Zero(t, f.timers.review, "review timer cancelled")
	assert.Equal(t, 1, f.timers.round)
	assert.Equal(t, 30*time.Second, f.timers.roundD)
	assert.Equal(t, t0.Add(30*time.Second), f.g.round.PassEndsAt)
	assert.Equal(t, map[string]Decision{"A": Undecided, "B": Undecided}, f.g.round.Decisions)
}

func TestReviewTimeout_EpochGuard(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"A", "B"}, defaultLayout(), Options{})
	f.g.Start()

	assert.False(t, f.g.ReviewTimeout(0), "stale epoch")
	assert.Equal(t, PhaseReview, f.g.Phase())

	assert.True(t, f.g.ReviewTimeout(1))
	assert.Equal(t, PhaseClaim, f.g.Phase())
	assert.Equal(t, 0, f.g.RevealedIndex())

	assert.False(t, f.g.ReviewTimeout(1), "phase already moved on")
	assert.Equal(t, 0, f.g.RevealedIndex())
}

func TestReviewTimeout_AfterPlayersFinishedReviewIsNoop(t *testing.T) {
	t.Parallel()

	f := startedInClaim(t)
	before := f.g.Snapshot("A")

	assert.False(t, f.g.ReviewTimeout(1))
	assert.Equal(t, before, f.g.Snapshot("A"))
}

func TestRoundTimeout_AutoPassesAndMovesOn(t *testing.T) {
	t.Parallel()

	f := startedInClaim(t)
	changed(t)(f.g.Pass("A"))

	assert.True(t, f.g.RoundTimeout(1))

	// no claims and no drinkers collapse straight to the next card
	assert.Equal(t, PhaseClaim, f.g.Phase())
	assert.Equal(t, 1, f.g.RevealedIndex())
	assert.Equal(t, 2, f.g.roundID)
	assert.Equal(t, 2, f.timers.round)
	assert.Contains(t, f.g.events, "⏱️ Tijd is op: B past")

	assert.False(t, f.g.RoundTimeout(1), "stale round timer")
	assert.Equal(t, 1, f.g.RevealedIndex())
}

func TestRoundTimeout_LeavesClaimsPending(t *testing.T) {
	t.Parallel()

	f := startedInClaim(t)
	changed(t)(f.g.Claim("A", 2, "B"))

	assert.True(t, f.g.RoundTimeout(1))
	assert.Equal(t, PhaseResolve, f.g.Phase())
	assert.Equal(t, Passed, f.g.round.Decisions["B"])
	assert.Equal(t, Claimed, f.g.round.Decisions["A"])
}

func TestClaim_LeavesClaimPhaseExactlyOnce(t *testing.T) {
	t.Parallel()

	f := startedInClaim(t)

	changed(t)(f.g.Claim("A", 2, "B"))
	assert.Equal(t, PhaseClaim, f.g.Phase())
	assert.Equal(t, 1, f.timers.round)

	changed(t)(f.g.Pass("B"))
	assert.Equal(t, PhaseResolve, f.g.Phase(), "resolve is not skipped when a claim exists")
	require.Len(t, f.g.round.Claims, 1)
	assert.Equal(t, PendingBelief, f.g.round.Claims[0].Status)
	assert.Zero(t, f.timers.round, "round timer cancelled")

	// a late timer and late actions change nothing
	assert.False(t, f.g.RoundTimeout(1))
	ignored(t)(f.g.Pass("B"))
	ignored(t)(f.g.Claim("B", 1, "A"))
	assert.Equal(t, PhaseResolve, f.g.Phase())
	assert.Equal(t, 0, f.g.RevealedIndex())
}

func TestBelieve_DrinkThenNextCard(t *testing.T) {
	t.Parallel()

	f := startedInClaim(t)
	changed(t)(f.g.Claim("A", 2, "B"))
	changed(t)(f.g.Pass("B"))

	changed(t)(f.g.Believe("B", 0, true))

	assert.Equal(t, Resolved, f.g.round.Claims[0].Status)
	assert.Equal(t, []Drink{{Sips: 2, Mult: 2}}, f.g.round.Drinks["B"])
	assert.Equal(t, PhaseDrink, f.g.Phase())
	assert.Contains(t, f.g.events, "B moet drinken: 2 slok(ken) x2 (geloofde A)")
	assert.Equal(t, []recorded{{"B", Drink{Sips: 2, Mult: 2}}}, f.recorder.drinks)

	ignored(t)(f.g.AckDrink("A"))
	changed(t)(f.g.AckDrink("B"))
	ignored(t)(f.g.AckDrink("B"))

	assert.Equal(t, PhaseClaim, f.g.Phase())
	assert.Equal(t, 1, f.g.RevealedIndex())
	assert.Contains(t, f.g.events, "B heeft bevestigd: gedronken ✅")
}

func TestFullGame_RevealsEachCardOnceThenMemory(t *testing.T) {
	t.Parallel()

	f := startedInClaim(t)

	var seen []int
	for f.g.Phase() == PhaseClaim {
		seen = append(seen, f.g.RevealedIndex())
		changed(t)(f.g.Pass("A"))
		changed(t)(f.g.Pass("B"))
	}

	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.Equal(t, PhaseMemory, f.g.Phase())
	assert.True(t, f.g.Finished())
	assert.Equal(t, 2, f.g.RevealedIndex(), "never past the last card")
	assert.Nil(t, f.g.round)
	assert.Zero(t, f.timers.round)
	assert.Zero(t, f.timers.review)

	ignored(t)(f.g.Pass("A"))
	assert.False(t, f.g.RoundTimeout(f.g.roundID))
	assert.Equal(t, PhaseMemory, f.g.Phase())
}

func TestRevealedIndex_EpochsStrictlyIncrease(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"A", "B"}, defaultLayout(), Options{})
	f.g.Start()
	require.True(t, f.g.ReviewTimeout(f.g.reviewID))

	lastEpoch, lastIndex := f.g.roundID, f.g.RevealedIndex()
	for f.g.Phase() == PhaseClaim {
		require.True(t, f.g.RoundTimeout(f.g.roundID))
		if f.g.Phase() != PhaseClaim {
			break
		}
		assert.Equal(t, lastEpoch+1, f.g.roundID)
		assert.Equal(t, lastIndex+1, f.g.RevealedIndex())
		lastEpoch, lastIndex = f.g.roundID, f.g.RevealedIndex()
	}
	assert.Equal(t, PhaseMemory, f.g.Phase())
}

func TestApexCard_Fundi(t *testing.T) {
	t.Parallel()

	f := startedInClaim(t)
	for f.g.RevealedIndex() < 2 {
		changed(t)(f.g.Pass("A"))
		changed(t)(f.g.Pass("B"))
	}
	snap := f.g.Snapshot("A")
	require.NotNil(t, snap.Current)
	assert.True(t, snap.Current.IsTop)
	assert.Equal(t, 1, snap.Current.Row)
	assert.Equal(t, "FUNDI", snap.Current.Base)

	changed(t)(f.g.Claim("A", 3, "B"))
	changed(t)(f.g.Pass("B"))
	changed(t)(f.g.Believe("B", 0, false))
	changed(t)(f.g.ProofPick("A", 0, 0))
	changed(t)(f.g.ProofPick("A", 0, 1))
	changed(t)(f.g.ProofPick("A", 0, 2))

	// the apex is an ace and A holds none
	assert.Equal(t, "DUBBELE FUNDI x3", f.g.round.Drinks["A"][0].String())
	assert.Equal(t, PhaseDrink, f.g.Phase())

	changed(t)(f.g.AckDrink("A"))
	assert.Equal(t, PhaseMemory, f.g.Phase())
}

func TestEventLog_Bounded(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"A", "B"}, defaultLayout(), Options{LogLimit: 2, LogTail: 1})
	f.g.Start()
	f.g.ReviewTimeout(1)
	for f.g.Phase() == PhaseClaim {
		f.g.RoundTimeout(f.g.roundID)
	}

	assert.Len(t, f.g.events, 2)
	assert.Equal(t, []string{"Piramide klaar! Eindtest: noem je 4 kaarten."}, f.g.Snapshot("A").Log)
}
