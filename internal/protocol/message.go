package protocol

import "encoding/json"

// Message is the envelope of every frame
type Message struct {
	Type    MessageType     `json:"type"`
	ID      string          `json:"id,omitempty"` // request id, echoed by the ack
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType names an event
type MessageType string

// Client → server
const (
	MsgPing MessageType = "ping"

	// room
	MsgRoomCreate MessageType = "room:create"
	MsgRoomJoin   MessageType = "room:join"
	MsgStartVote  MessageType = "start:vote"

	// game
	MsgReviewReady  MessageType = "review:ready"
	MsgClaim        MessageType = "game:claim"
	MsgPass         MessageType = "game:pass"
	MsgBelieve      MessageType = "game:believe"
	MsgProofPick    MessageType = "game:proofPick"
	MsgDrinkAck     MessageType = "drink:ack"
	MsgMemorySubmit MessageType = "memory:submit"
)

// Server → client
const (
	MsgConnected  MessageType = "connected"
	MsgPong       MessageType = "pong"
	MsgAck        MessageType = "ack"
	MsgRoomStatus MessageType = "room:status"
	MsgGameState  MessageType = "game:state"
	MsgError      MessageType = "error"
)
