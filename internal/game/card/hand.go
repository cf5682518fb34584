package card

import "strings"

// AllRank reports whether every card at the given hand slots has rank r.
// Out-of-range slots never match.
func AllRank(hand []Card, slots []int, r Rank) bool {
	for _, i := range slots {
		if i < 0 || i >= len(hand) || hand[i].Rank != r {
			return false
		}
	}
	return true
}

// MatchGuesses compares guessed face values with the hand slot by slot.
// Guesses are case-insensitive; a length mismatch is a miss.
func MatchGuesses(hand []Card, guesses []string) bool {
	if len(guesses) != len(hand) {
		return false
	}
	for i, g := range guesses {
		if strings.ToUpper(strings.TrimSpace(g)) != hand[i].Rank.String() {
			return false
		}
	}
	return true
}
