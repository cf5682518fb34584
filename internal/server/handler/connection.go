package handler

import (
	"time"

	"github.com/palemoky/piramiden/internal/protocol"
	"github.com/palemoky/piramiden/internal/protocol/request"
	"github.com/palemoky/piramiden/internal/types"
)

// handlePing answers a heartbeat with the server time so clients can render deadlines
func (h *Handler) handlePing(client types.ClientInterface, req request.Ping) {
	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: req.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}
