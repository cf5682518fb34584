package protocol

// Error codes
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002
	ErrCodeInvalidInput      = 1003
	ErrCodeRoomNotFound      = 2001
	ErrCodeRoomFull          = 2002
	ErrCodeNotInRoom         = 2003
	ErrCodeGameStarted       = 2004
	ErrCodeNameTaken         = 2005
	ErrCodeInvalidMultiplier = 3001
	ErrCodeSelfTarget        = 3002
	ErrCodeUnknownPlayer     = 3003
	ErrCodeUnknownClaim      = 3004
	ErrCodeInvalidCardIndex  = 3005
	ErrCodeMalformedGuesses  = 3006
	ErrCodeServerMaintenance = 5003
)

// ErrorMessages maps a code to the text shown to players
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "Onbekende fout.",
	ErrCodeInvalidMsg:        "Ongeldig bericht.",
	ErrCodeRateLimit:         "Te veel verzoeken, even rustig aan.",
	ErrCodeInvalidInput:      "Ongeldige code/naam.",
	ErrCodeRoomNotFound:      "Room bestaat niet.",
	ErrCodeRoomFull:          "Room is vol.",
	ErrCodeNotInRoom:         "Je zit niet in een room.",
	ErrCodeGameStarted:       "Spel is al gestart.",
	ErrCodeNameTaken:         "Die naam is al in gebruik in deze room.",
	ErrCodeInvalidMultiplier: "Kies een multiplier van 1 tot 4.",
	ErrCodeSelfTarget:        "Je kunt jezelf niet kiezen.",
	ErrCodeUnknownPlayer:     "Die speler zit niet in deze room.",
	ErrCodeUnknownClaim:      "Die claim bestaat niet.",
	ErrCodeInvalidCardIndex:  "Kies een kaart van 0 tot 3.",
	ErrCodeMalformedGuesses:  "Geef precies 4 gokken.",
	ErrCodeServerMaintenance: "Server is in onderhoud.",
}
