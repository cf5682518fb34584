package handler

import (
	"github.com/palemoky/piramiden/internal/game/engine"
	"github.com/palemoky/piramiden/internal/protocol"
	"github.com/palemoky/piramiden/internal/protocol/request"
	"github.com/palemoky/piramiden/internal/types"
)

// act runs one engine action for client. Phase and authorization mismatches
// are ignored by the engine and still acknowledged as ok.
func (h *Handler) act(client types.ClientInterface, action func(g *engine.Game, name string) (bool, error)) (*protocol.AckPayload, error) {
	return nil, h.rooms.Act(client, action)
}

func (h *Handler) handleReviewReady(client types.ClientInterface, _ request.Request) (*protocol.AckPayload, error) {
	return h.act(client, func(g *engine.Game, name string) (bool, error) {
		return g.Ready(name)
	})
}

func (h *Handler) handleClaim(client types.ClientInterface, req request.Request) (*protocol.AckPayload, error) {
	claim := req.(request.Claim)
	return h.act(client, func(g *engine.Game, name string) (bool, error) {
		return g.Claim(name, claim.Mult, claim.Target)
	})
}

func (h *Handler) handlePass(client types.ClientInterface, _ request.Request) (*protocol.AckPayload, error) {
	return h.act(client, func(g *engine.Game, name string) (bool, error) {
		return g.Pass(name)
	})
}

func (h *Handler) handleBelieve(client types.ClientInterface, req request.Request) (*protocol.AckPayload, error) {
	b := req.(request.Believe)
	return h.act(client, func(g *engine.Game, name string) (bool, error) {
		return g.Believe(name, b.ClaimIndex, b.Believe)
	})
}

func (h *Handler) handleProofPick(client types.ClientInterface, req request.Request) (*protocol.AckPayload, error) {
	pick := req.(request.ProofPick)
	return h.act(client, func(g *engine.Game, name string) (bool, error) {
		return g.ProofPick(name, pick.ClaimIndex, pick.CardIndex)
	})
}

func (h *Handler) handleDrinkAck(client types.ClientInterface, _ request.Request) (*protocol.AckPayload, error) {
	return h.act(client, func(g *engine.Game, name string) (bool, error) {
		return g.AckDrink(name)
	})
}

func (h *Handler) handleMemorySubmit(client types.ClientInterface, req request.Request) (*protocol.AckPayload, error) {
	guesses := req.(request.MemorySubmit).Guesses
	return h.act(client, func(g *engine.Game, name string) (bool, error) {
		return g.SubmitMemory(name, guesses)
	})
}
