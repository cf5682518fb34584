package card

import (
	"fmt"
	"math/rand/v2"
)

// Suit is the suit of a card
type Suit int

// Rank is the face value of a card
type Rank int

// Card is a single playing card
type Card struct {
	Suit Suit
	Rank Rank
}

const (
	Spade Suit = iota
	Heart
	Diamond
	Club
)

// suitLetters are the one-letter codes used on the wire
var suitLetters = map[Suit]string{
	Spade:   "S",
	Heart:   "H",
	Diamond: "D",
	Club:    "C",
}

// suitSymbols are used in log lines
var suitSymbols = map[Suit]string{
	Spade:   "♠",
	Heart:   "♥",
	Diamond: "♦",
	Club:    "♣",
}

func (s Suit) String() string {
	return suitSymbols[s]
}

// Letter returns the wire code of the suit (S, H, D or C)
func (s Suit) Letter() string {
	return suitLetters[s]
}

const (
	Rank2 Rank = iota + 2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ // Jack
	RankQ // Queen
	RankK // King
	RankA // Ace
)

// rankNames maps a rank to its face value
var rankNames = map[Rank]string{
	Rank2:  "2",
	Rank3:  "3",
	Rank4:  "4",
	Rank5:  "5",
	Rank6:  "6",
	Rank7:  "7",
	Rank8:  "8",
	Rank9:  "9",
	Rank10: "10",
	RankJ:  "J",
	RankQ:  "Q",
	RankK:  "K",
	RankA:  "A",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return "?"
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Deck is an ordered pile of cards, index 0 is the top
type Deck []Card

// DeckSize is the number of cards in a standard deck
const DeckSize = 52

// NewDeck returns the 52 cards in rank-major order
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for r := Rank2; r <= RankA; r++ {
		for s := Spade; s <= Club; s++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle permutes the deck in place using rng
func (d Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Draw takes n cards from the top. It panics if fewer than n remain.
func (d *Deck) Draw(n int) []Card {
	if n > len(*d) {
		panic(fmt.Sprintf("draw %d from a deck of %d", n, len(*d)))
	}
	drawn := make([]Card, n)
	copy(drawn, (*d)[:n])
	*d = (*d)[n:]
	return drawn
}
