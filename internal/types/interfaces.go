package types

import (
	"github.com/palemoky/piramiden/internal/protocol"
)

// ServerInterface is what handlers need from the server, kept here to break
// the server -> handler -> server import cycle.
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
}

// ClientInterface is one connected player
type ClientInterface interface {
	GetID() string
	GetName() string
	SetName(name string)
	GetRoom() string
	SetRoom(code string)
	SendMessage(msg *protocol.Message)
	Close()
}
