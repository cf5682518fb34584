package room

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/palemoky/piramiden/internal/game/engine"
	"github.com/palemoky/piramiden/internal/server/storage"
)

// toRoomData builds the redis mirror. Caller holds r.mu.
func (r *Room) toRoomData() *storage.RoomData {
	data := &storage.RoomData{
		Code:          r.Code,
		Host:          r.host,
		Players:       slices.Clone(r.players),
		Started:       r.started,
		RevealedIndex: -1,
		CreatedAt:     r.CreatedAt.Unix(),
	}
	if r.game != nil {
		data.Phase = string(r.game.Phase())
		data.RevealedIndex = r.game.RevealedIndex()
		data.PyramidTotal = r.game.PyramidTotal()
	}
	return data
}

// saveAsync mirrors the room without blocking the caller. Caller holds r.mu.
func (r *Room) saveAsync() {
	if r.mirror != nil {
		r.mirror.save(r.toRoomData())
	}
}

// mirror writes one room to the store from a single goroutine, so writes land
// in the order they were made. Only the newest pending snapshot is written,
// and nothing is written after the delete.
type mirror struct {
	store Store
	code  string
	log   *zerolog.Logger

	mu      sync.Mutex
	next    *storage.RoomData
	deleted bool
	wake    chan struct{}
}

func newMirror(store Store, code string, log *zerolog.Logger) *mirror {
	m := &mirror{store: store, code: code, log: log, wake: make(chan struct{}, 1)}
	go m.run()
	return m
}

func (m *mirror) save(data *storage.RoomData) {
	m.mu.Lock()
	if m.deleted {
		m.mu.Unlock()
		return
	}
	m.next = data
	m.mu.Unlock()
	m.notify()
}

// delete queues the removal and ends the writer once it ran
func (m *mirror) delete() {
	m.mu.Lock()
	m.deleted = true
	m.next = nil
	m.mu.Unlock()
	m.notify()
}

func (m *mirror) notify() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *mirror) run() {
	for range m.wake {
		m.mu.Lock()
		data, deleted := m.next, m.deleted
		m.next = nil
		m.mu.Unlock()

		if deleted {
			if err := m.store.DeleteRoom(context.Background(), m.code); err != nil {
				m.log.Warn().Err(err).Msg("delete room from redis failed")
			}
			return
		}
		if data != nil {
			if err := m.store.SaveRoom(context.Background(), m.code, data); err != nil {
				m.log.Warn().Err(err).Msg("mirror room failed")
			}
		}
	}
}

// roomRecorder forwards drink and memory outcomes to the store
type roomRecorder struct {
	r *Room
}

func (rec roomRecorder) RecordDrink(player string, d engine.Drink) {
	store, code := rec.r.dir.opts.Store, rec.r.Code
	if store == nil {
		return
	}
	record := storage.DrinkRecord{Sips: d.TotalSips(), Fundi: d.Fundi}
	go func() {
		if err := store.RecordDrink(context.Background(), code, player, record); err != nil {
			rec.r.log.Warn().Err(err).Str("player", player).Msg("record drink failed")
		}
	}()
}

func (rec roomRecorder) RecordMemory(player string, ok bool) {
	store, code := rec.r.dir.opts.Store, rec.r.Code
	if store == nil {
		return
	}
	go func() {
		if err := store.RecordMemory(context.Background(), code, player, ok); err != nil {
			rec.r.log.Warn().Err(err).Str("player", player).Msg("record memory failed")
		}
	}()
}
