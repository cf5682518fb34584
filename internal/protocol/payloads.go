package protocol

// --- client → server ---

// CreateRoomPayload room:create
type CreateRoomPayload struct {
	Name string `json:"name"`
}

// JoinRoomPayload room:join
type JoinRoomPayload struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ClaimPayload game:claim. Mult is a float so that 2.5 is rejected instead of truncated.
type ClaimPayload struct {
	Mult   float64 `json:"mult"`
	Target string  `json:"target"`
}

// BelievePayload game:believe
type BelievePayload struct {
	ClaimIndex float64 `json:"claimIndex"`
	Believe    bool    `json:"believe"`
}

// ProofPickPayload game:proofPick
type ProofPickPayload struct {
	ClaimIndex float64 `json:"claimIndex"`
	CardIndex  float64 `json:"cardIndex"`
}

// MemorySubmitPayload memory:submit
type MemorySubmitPayload struct {
	Guesses []string `json:"guesses"`
}

// PingPayload ping
type PingPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// --- server → client ---

// ConnectedPayload connected
type ConnectedPayload struct {
	ConnID string `json:"connId"`
}

// PongPayload pong
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"`
	ServerTimestamp int64 `json:"serverTimestamp"`
}

// RoomStatusPayload room:status
type RoomStatusPayload struct {
	Host     string   `json:"host"`
	Players  []string `json:"players"`
	Votes    int      `json:"votes"`
	Required int      `json:"required"`
	Voters   []string `json:"voters"`
}

// AckPayload answers a request that carried an id
type AckPayload struct {
	ID     string             `json:"id"`
	OK     bool               `json:"ok"`
	Error  string             `json:"error,omitempty"`
	Code   string             `json:"code,omitempty"` // room code on room:create/room:join
	Status *RoomStatusPayload `json:"status,omitempty"`
}

// ErrorPayload error
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
