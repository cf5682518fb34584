// Package pyramid deals the hands and lays out the face-down pyramid.
//
// Cards are revealed base first. The base is the widest row and carries the
// highest row number (Rows); each following row is one card shorter and one
// lower, ending at row 1, the apex.
package pyramid

import (
	"errors"
	"math/rand/v2"

	"github.com/palemoky/piramiden/internal/game/card"
)

// HandSize is the number of cards dealt to each player
const HandSize = 4

// ApexRow is the row number of the final card
const ApexRow = 1

// ErrTooManyPlayers is returned when the hands leave no card for the pyramid
var ErrTooManyPlayers = errors.New("pyramid: not enough cards left after dealing")

// Layout is the outcome of a deal
type Layout struct {
	Hands map[string][]card.Card
	Cards []card.Card // pyramid, index 0 is the first card revealed
	Rows  int
}

// MaxRows returns the largest r with r(r+1)/2 <= n
func MaxRows(n int) int {
	r := 0
	for Size(r+1) <= n {
		r++
	}
	return r
}

// Size returns the number of cards in a pyramid of the given rows
func Size(rows int) int {
	return rows * (rows + 1) / 2
}

// RowOf returns the row of the card at idx in a pyramid of the given rows,
// or 0 when idx is outside the pyramid.
func RowOf(rows, idx int) int {
	if idx < 0 {
		return 0
	}
	consumed := 0
	for row := rows; row >= ApexRow; row-- {
		// a row numbered n holds n cards
		if idx < consumed+row {
			return row
		}
		consumed += row
	}
	return 0
}

// IsApex reports whether row is the top of the pyramid
func IsApex(row int) bool {
	return row == ApexRow
}

// Build shuffles a fresh deck once, deals HandSize cards per player in the
// given order, then takes the largest pyramid the remainder allows.
func Build(players []string, rng *rand.Rand) (*Layout, error) {
	deck := card.NewDeck()
	if len(players)*HandSize >= len(deck) {
		return nil, ErrTooManyPlayers
	}
	deck.Shuffle(rng)

	hands := make(map[string][]card.Card, len(players))
	for _, p := range players {
		hands[p] = deck.Draw(HandSize)
	}

	rows := MaxRows(len(deck))
	return &Layout{
		Hands: hands,
		Cards: deck.Draw(Size(rows)),
		Rows:  rows,
	}, nil
}
