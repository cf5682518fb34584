package room

import (
	"slices"
	"strings"

	"github.com/palemoky/piramiden/internal/apperrors"
	"github.com/palemoky/piramiden/internal/game/engine"
	"github.com/palemoky/piramiden/internal/logger"
	"github.com/palemoky/piramiden/internal/protocol"
	"github.com/palemoky/piramiden/internal/types"
)

// Create opens a room with client as sole player and host. A client already
// in a room leaves it once the new room exists.
func (d *Directory) Create(client types.ClientInterface, name string) (*Room, protocol.RoomStatusPayload, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, protocol.RoomStatusPayload{}, apperrors.ErrInvalidInput
	}

	d.mu.Lock()
	code := d.generateRoomCode()
	room := &Room{
		Code:      code,
		CreatedAt: d.opts.Clock.Now(),
		host:      name,
		players:   []string{name},
		members:   map[string]types.ClientInterface{name: client},
		dir:       d,
		log:       logger.With("room", code),
	}
	if d.opts.Store != nil {
		room.mirror = newMirror(d.opts.Store, code, &room.log)
	}
	d.rooms[code] = room
	d.mu.Unlock()

	d.Leave(client)

	room.mu.Lock()
	defer room.mu.Unlock()

	client.SetName(name)
	client.SetRoom(code)
	room.publish()
	room.saveAsync()

	logger.LogInfo("🏠 Room %s created by %s", code, name)
	return room, room.status(), nil
}

// Join adds client to the room with the given code under name. The seat is
// taken before the client leaves its current room, so a refused join
// changes nothing.
func (d *Directory) Join(client types.ClientInterface, code, name string) (*Room, protocol.RoomStatusPayload, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, protocol.RoomStatusPayload{}, apperrors.ErrInvalidInput
	}

	room := d.GetRoom(code)
	if room == nil {
		return nil, protocol.RoomStatusPayload{}, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	switch {
	case room.closed:
		room.mu.Unlock()
		return nil, protocol.RoomStatusPayload{}, apperrors.ErrRoomNotFound
	case room.started:
		room.mu.Unlock()
		return nil, protocol.RoomStatusPayload{}, apperrors.ErrGameStarted
	case slices.Contains(room.players, name):
		room.mu.Unlock()
		return nil, protocol.RoomStatusPayload{}, apperrors.ErrNameTaken
	case len(room.players) >= d.opts.MaxPlayers:
		room.mu.Unlock()
		return nil, protocol.RoomStatusPayload{}, apperrors.ErrRoomFull
	}
	room.players = append(room.players, name)
	room.members[name] = client
	room.voters = slices.DeleteFunc(room.voters, func(v string) bool { return v == name })
	room.mu.Unlock()

	// the reserved seat keeps the room open while the old one is left
	d.Leave(client)

	room.mu.Lock()
	defer room.mu.Unlock()

	client.SetName(name)
	client.SetRoom(code)
	room.publish()
	room.saveAsync()

	logger.LogInfo("👤 %s joined room %s (%d players)", name, code, len(room.players))
	return room, room.status(), nil
}

// ToggleStartVote adds or withdraws the start vote of client. Once enough
// players voted the game starts.
func (d *Directory) ToggleStartVote(client types.ClientInterface) error {
	room, name, err := d.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed || room.members[name] != client {
		return apperrors.ErrNotInRoom
	}
	if room.started {
		return nil
	}

	if slices.Contains(room.voters, name) {
		room.voters = slices.DeleteFunc(room.voters, func(v string) bool { return v == name })
	} else {
		room.voters = append(room.voters, name)
	}
	room.publish()

	if len(room.voters) >= requiredVotes(len(room.players)) && len(room.players) >= d.opts.MinPlayers {
		room.startGame()
	}
	return nil
}

// Act runs one game action for client under the room lock. Without a game
// the action is ignored.
func (d *Directory) Act(client types.ClientInterface, action func(g *engine.Game, name string) (bool, error)) error {
	room, name, err := d.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed || room.members[name] != client {
		return apperrors.ErrNotInRoom
	}
	if room.game == nil {
		return nil
	}

	changed, err := action(room.game, name)
	if err != nil {
		return err
	}
	if changed {
		room.publishState()
		room.saveAsync()
	}
	return nil
}

// Leave removes client from its room. The last one out closes the room.
func (d *Directory) Leave(client types.ClientInterface) {
	room, name, err := d.roomOf(client)
	if err != nil {
		return
	}

	room.mu.Lock()
	if room.closed || room.members[name] != client {
		room.mu.Unlock()
		return
	}

	room.players = slices.DeleteFunc(room.players, func(p string) bool { return p == name })
	room.voters = slices.DeleteFunc(room.voters, func(v string) bool { return v == name })
	delete(room.members, name)
	client.SetRoom("")

	if len(room.players) == 0 {
		room.close()
		room.mu.Unlock()

		d.mu.Lock()
		if d.rooms[room.Code] == room {
			delete(d.rooms, room.Code)
		}
		d.mu.Unlock()

		if room.mirror != nil {
			room.mirror.delete()
		}
		logger.LogInfo("🏠 Room %s closed", room.Code)
		return
	}

	if room.host == name {
		room.host = room.players[0]
	}
	if room.game != nil {
		room.game.RemovePlayer(name)
	}
	room.publish()
	room.saveAsync()
	room.mu.Unlock()

	logger.LogInfo("👋 %s left room %s", name, room.Code)
}

// GetRoom returns the live room with code, or nil
func (d *Directory) GetRoom(code string) *Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rooms[strings.ToUpper(code)]
}

// GetActiveGamesCount counts rooms whose game has not reached the memory test
func (d *Directory) GetActiveGamesCount() int {
	d.mu.RLock()
	rooms := make([]*Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		rooms = append(rooms, r)
	}
	d.mu.RUnlock()

	count := 0
	for _, r := range rooms {
		r.mu.Lock()
		if r.game != nil && !r.game.Finished() {
			count++
		}
		r.mu.Unlock()
	}
	return count
}

// RoomCount returns the number of live rooms
func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

func (d *Directory) roomOf(client types.ClientInterface) (*Room, string, error) {
	code := client.GetRoom()
	if code == "" {
		return nil, "", apperrors.ErrNotInRoom
	}
	room := d.GetRoom(code)
	if room == nil {
		return nil, "", apperrors.ErrNotInRoom
	}
	return room, client.GetName(), nil
}

// requiredVotes is ceil(0.75 * n)
func requiredVotes(n int) int {
	return (3*n + 3) / 4
}
