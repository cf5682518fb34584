package room

import (
	"slices"

	"github.com/palemoky/piramiden/internal/protocol"
)

// Status returns the lobby view of the room
func (r *Room) Status() protocol.RoomStatusPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status()
}

func (r *Room) status() protocol.RoomStatusPayload {
	return protocol.RoomStatusPayload{
		Host:     r.host,
		Players:  slices.Clone(r.players),
		Votes:    len(r.voters),
		Required: requiredVotes(len(r.players)),
		Voters:   append([]string{}, r.voters...),
	}
}

// publish pushes room:status and, once a game runs, the game state. Used on
// membership and vote changes. Caller holds r.mu.
func (r *Room) publish() {
	statusMsg := protocol.MustNewMessage(protocol.MsgRoomStatus, r.status())
	for _, name := range r.players {
		if client := r.members[name]; client != nil {
			client.SendMessage(statusMsg)
		}
	}
	r.publishState()
}

// publishState sends each member its own game:state. Caller holds r.mu.
func (r *Room) publishState() {
	if r.game == nil {
		return
	}
	for _, name := range r.players {
		if client := r.members[name]; client != nil {
			client.SendMessage(protocol.MustNewMessage(protocol.MsgGameState, r.game.Snapshot(name)))
		}
	}
}
