// Package request turns wire messages into one strict type per event.
package request

import (
	"math"
	"strings"

	"github.com/palemoky/piramiden/internal/apperrors"
	"github.com/palemoky/piramiden/internal/protocol"
)

// HandSize is the number of slots a proof pick or memory guess can address
const HandSize = 4

// Request is a decoded and validated client event
type Request interface {
	Type() protocol.MessageType
}

type (
	// CreateRoom room:create
	CreateRoom struct{ Name string }
	// JoinRoom room:join, Code is upper-cased
	JoinRoom struct{ Code, Name string }
	// StartVote start:vote
	StartVote struct{}
	// ReviewReady review:ready
	ReviewReady struct{}
	// Claim game:claim
	Claim struct {
		Mult   int
		Target string
	}
	// Pass game:pass
	Pass struct{}
	// Believe game:believe
	Believe struct {
		ClaimIndex int
		Believe    bool
	}
	// ProofPick game:proofPick
	ProofPick struct{ ClaimIndex, CardIndex int }
	// DrinkAck drink:ack
	DrinkAck struct{}
	// MemorySubmit memory:submit
	MemorySubmit struct{ Guesses []string }
	// Ping ping
	Ping struct{ Timestamp int64 }
)

func (CreateRoom) Type() protocol.MessageType   { return protocol.MsgRoomCreate }
func (JoinRoom) Type() protocol.MessageType     { return protocol.MsgRoomJoin }
func (StartVote) Type() protocol.MessageType    { return protocol.MsgStartVote }
func (ReviewReady) Type() protocol.MessageType  { return protocol.MsgReviewReady }
func (Claim) Type() protocol.MessageType        { return protocol.MsgClaim }
func (Pass) Type() protocol.MessageType         { return protocol.MsgPass }
func (Believe) Type() protocol.MessageType      { return protocol.MsgBelieve }
func (ProofPick) Type() protocol.MessageType    { return protocol.MsgProofPick }
func (DrinkAck) Type() protocol.MessageType     { return protocol.MsgDrinkAck }
func (MemorySubmit) Type() protocol.MessageType { return protocol.MsgMemorySubmit }
func (Ping) Type() protocol.MessageType         { return protocol.MsgPing }

type parser func(msg *protocol.Message) (Request, error)

var parsers = map[protocol.MessageType]parser{
	protocol.MsgRoomCreate:   parseCreateRoom,
	protocol.MsgRoomJoin:     parseJoinRoom,
	protocol.MsgStartVote:    func(*protocol.Message) (Request, error) { return StartVote{}, nil },
	protocol.MsgReviewReady:  func(*protocol.Message) (Request, error) { return ReviewReady{}, nil },
	protocol.MsgClaim:        parseClaim,
	protocol.MsgPass:         func(*protocol.Message) (Request, error) { return Pass{}, nil },
	protocol.MsgBelieve:      parseBelieve,
	protocol.MsgProofPick:    parseProofPick,
	protocol.MsgDrinkAck:     func(*protocol.Message) (Request, error) { return DrinkAck{}, nil },
	protocol.MsgMemorySubmit: parseMemorySubmit,
	protocol.MsgPing:         parsePing,
}

// Parse decodes msg into its request type and validates the fields that do
// not depend on room state. Unknown types and undecodable payloads yield
// apperrors.ErrInvalidMessage.
func Parse(msg *protocol.Message) (Request, error) {
	if msg == nil {
		return nil, apperrors.ErrInvalidMessage
	}
	p, ok := parsers[msg.Type]
	if !ok {
		return nil, apperrors.ErrInvalidMessage
	}
	return p(msg)
}

func decode[T any](msg *protocol.Message) (*T, error) {
	payload, err := protocol.ParsePayload[T](msg)
	if err != nil {
		return nil, apperrors.ErrInvalidMessage
	}
	return payload, nil
}

func parseCreateRoom(msg *protocol.Message) (Request, error) {
	p, err := decode[protocol.CreateRoomPayload](msg)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, apperrors.ErrInvalidInput
	}
	return CreateRoom{Name: name}, nil
}

func parseJoinRoom(msg *protocol.Message) (Request, error) {
	p, err := decode[protocol.JoinRoomPayload](msg)
	if err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(p.Code))
	name := strings.TrimSpace(p.Name)
	if code == "" || name == "" {
		return nil, apperrors.ErrInvalidInput
	}
	return JoinRoom{Code: code, Name: name}, nil
}

func parseClaim(msg *protocol.Message) (Request, error) {
	p, err := decode[protocol.ClaimPayload](msg)
	if err != nil {
		return nil, err
	}
	mult, ok := wholeNumber(p.Mult)
	if !ok || mult < 1 || mult > HandSize {
		return nil, apperrors.ErrInvalidMultiplier
	}
	target := strings.TrimSpace(p.Target)
	if target == "" {
		return nil, apperrors.ErrUnknownPlayer
	}
	return Claim{Mult: mult, Target: target}, nil
}

func parseBelieve(msg *protocol.Message) (Request, error) {
	p, err := decode[protocol.BelievePayload](msg)
	if err != nil {
		return nil, err
	}
	idx, ok := wholeNumber(p.ClaimIndex)
	if !ok || idx < 0 {
		return nil, apperrors.ErrUnknownClaim
	}
	return Believe{ClaimIndex: idx, Believe: p.Believe}, nil
}

func parseProofPick(msg *protocol.Message) (Request, error) {
	p, err := decode[protocol.ProofPickPayload](msg)
	if err != nil {
		return nil, err
	}
	idx, ok := wholeNumber(p.ClaimIndex)
	if !ok || idx < 0 {
		return nil, apperrors.ErrUnknownClaim
	}
	card, ok := wholeNumber(p.CardIndex)
	if !ok || card < 0 || card >= HandSize {
		return nil, apperrors.ErrInvalidCardIndex
	}
	return ProofPick{ClaimIndex: idx, CardIndex: card}, nil
}

func parseMemorySubmit(msg *protocol.Message) (Request, error) {
	p, err := protocol.ParsePayload[protocol.MemorySubmitPayload](msg)
	if err != nil || len(p.Guesses) != HandSize {
		return nil, apperrors.ErrMalformedGuesses
	}
	return MemorySubmit{Guesses: p.Guesses}, nil
}

func parsePing(msg *protocol.Message) (Request, error) {
	p, err := decode[protocol.PingPayload](msg)
	if err != nil {
		return nil, err
	}
	return Ping{Timestamp: p.Timestamp}, nil
}

func wholeNumber(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
