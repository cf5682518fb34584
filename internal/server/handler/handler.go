package handler

import (
	"github.com/palemoky/piramiden/internal/apperrors"
	"github.com/palemoky/piramiden/internal/game/room"
	"github.com/palemoky/piramiden/internal/logger"
	"github.com/palemoky/piramiden/internal/protocol"
	"github.com/palemoky/piramiden/internal/protocol/request"
	"github.com/palemoky/piramiden/internal/types"
)

// HandlerDeps are the collaborators of a Handler
type HandlerDeps struct {
	Server types.ServerInterface
	Rooms  *room.Directory
}

// Handler dispatches client requests
type Handler struct {
	server   types.ServerInterface
	rooms    *room.Directory
	handlers map[protocol.MessageType]handlerFunc
}

// handlerFunc handles one decoded request. A non-nil ack is merged into the
// reply sent to requests that carry an id.
type handlerFunc func(client types.ClientInterface, req request.Request) (*protocol.AckPayload, error)

// NewHandler creates a handler
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server: deps.Server,
		rooms:  deps.Rooms,
	}
	h.initHandlers()
	return h
}

func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// lobby
		protocol.MsgRoomCreate: h.handleCreateRoom,
		protocol.MsgRoomJoin:   h.handleJoinRoom,
		protocol.MsgStartVote:  h.handleStartVote,

		// game
		protocol.MsgReviewReady:  h.handleReviewReady,
		protocol.MsgClaim:        h.handleClaim,
		protocol.MsgPass:         h.handlePass,
		protocol.MsgBelieve:      h.handleBelieve,
		protocol.MsgProofPick:    h.handleProofPick,
		protocol.MsgDrinkAck:     h.handleDrinkAck,
		protocol.MsgMemorySubmit: h.handleMemorySubmit,
	}
}

// Handle decodes msg, runs its handler and answers requests that carry an id
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		}
	}()

	req, err := request.Parse(msg)
	if err != nil {
		if _, known := h.handlers[msg.Type]; !known && msg.Type != protocol.MsgPing {
			logger.LogWarn("⚠️ Unknown message type %q from %s (%s)", msg.Type, client.GetName(), client.GetID())
		}
		h.reply(client, msg.ID, nil, err)
		return
	}

	if ping, ok := req.(request.Ping); ok {
		h.handlePing(client, ping)
		return
	}

	handler, ok := h.handlers[msg.Type]
	if !ok {
		h.reply(client, msg.ID, nil, nil)
		return
	}
	ack, err := handler(client, req)
	h.reply(client, msg.ID, ack, err)
}

// reply answers with an ack when the request carried an id, otherwise it
// only reports errors
func (h *Handler) reply(client types.ClientInterface, id string, ack *protocol.AckPayload, err error) {
	if id == "" {
		if err != nil {
			client.SendMessage(apperrors.ToMessage(err))
		}
		return
	}

	out := protocol.AckPayload{ID: id, OK: err == nil}
	if err != nil {
		out.Error = err.Error()
	} else if ack != nil {
		out.Code, out.Status = ack.Code, ack.Status
	}
	client.SendMessage(protocol.NewAck(out))
}
