package apperrors

import (
	"errors"

	"github.com/palemoky/piramiden/internal/protocol"
)

// GameError is a validation failure reported back to the caller
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// Request errors
var (
	ErrInvalidMessage = newError(protocol.ErrCodeInvalidMsg)
	ErrRateLimit      = newError(protocol.ErrCodeRateLimit)
)

// Room errors
var (
	ErrInvalidInput      = newError(protocol.ErrCodeInvalidInput)
	ErrRoomNotFound      = newError(protocol.ErrCodeRoomNotFound)
	ErrRoomFull          = newError(protocol.ErrCodeRoomFull)
	ErrNotInRoom         = newError(protocol.ErrCodeNotInRoom)
	ErrGameStarted       = newError(protocol.ErrCodeGameStarted)
	ErrNameTaken         = newError(protocol.ErrCodeNameTaken)
	ErrServerMaintenance = newError(protocol.ErrCodeServerMaintenance)
)

// Game errors
var (
	ErrInvalidMultiplier = newError(protocol.ErrCodeInvalidMultiplier)
	ErrSelfTarget        = newError(protocol.ErrCodeSelfTarget)
	ErrUnknownPlayer     = newError(protocol.ErrCodeUnknownPlayer)
	ErrUnknownClaim      = newError(protocol.ErrCodeUnknownClaim)
	ErrInvalidCardIndex  = newError(protocol.ErrCodeInvalidCardIndex)
	ErrMalformedGuesses  = newError(protocol.ErrCodeMalformedGuesses)
)

// Code extracts the error code of err, ErrCodeUnknown when it is not a GameError
func Code(err error) int {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return protocol.ErrCodeUnknown
}

// ToMessage turns err into an error envelope
func ToMessage(err error) *protocol.Message {
	return protocol.NewErrorMessageWithText(Code(err), err.Error())
}
