package engine

import (
	"fmt"
	"time"
)

// Phase is the stage a game is in
type Phase string

const (
	PhaseReview  Phase = "review"
	PhaseClaim   Phase = "claim"
	PhaseResolve Phase = "resolve"
	PhaseDrink   Phase = "drink"
	PhaseMemory  Phase = "memory" // terminal
)

// Decision is what a player did with the current card
type Decision string

const (
	Undecided Decision = ""
	Passed    Decision = "passed"
	Claimed   Decision = "claimed"
)

// ClaimStatus only moves forward: pending_belief → [awaiting_proof →] resolved
type ClaimStatus string

const (
	PendingBelief ClaimStatus = "pending_belief"
	AwaitingProof ClaimStatus = "awaiting_proof"
	Resolved      ClaimStatus = "resolved"
)

// MaxMultiplier bounds the multiplier of a claim
const MaxMultiplier = 4

// Claim is a player's statement that their hand holds the current card's rank
type Claim struct {
	Claimer    string
	Target     string
	Mult       int
	Status     ClaimStatus
	ProofPicks []int
}

// Drink is one obligation handed out while resolving a claim
type Drink struct {
	Sips   int  // row base, 0 at the apex
	Fundi  bool // apex card: empty the glass
	Double bool // doubt was raised
	Mult   int
}

// String renders the line shown to players, e.g. "6 slok(ken) x3" or "DUBBELE FUNDI"
func (d Drink) String() string {
	multTxt := ""
	if d.Mult > 1 {
		multTxt = fmt.Sprintf(" x%d", d.Mult)
	}
	if d.Fundi {
		if d.Double {
			return "DUBBELE FUNDI" + multTxt
		}
		return "FUNDI" + multTxt
	}
	amount := d.Sips
	if d.Double {
		amount *= 2
	}
	return fmt.Sprintf("%d slok(ken)%s", amount, multTxt)
}

// TotalSips is the number of sips owed, 0 for a fundi
func (d Drink) TotalSips() int {
	if d.Fundi {
		return 0
	}
	sips := d.Sips * max(d.Mult, 1)
	if d.Double {
		sips *= 2
	}
	return sips
}

// ReviewState tracks the memorise-your-hand phase
type ReviewState struct {
	EndsAt time.Time
	Ready  map[string]bool
}

// Round is the state of one revealed card
type Round struct {
	Decisions  map[string]Decision
	PassEndsAt time.Time
	Claims     []*Claim
	Drinks     map[string][]Drink
	DrinkAck   map[string]bool
}

// MemoryState tracks the final guessing phase
type MemoryState struct {
	Submitted map[string]bool
}
