package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	roomKeyPrefix   = "room:"
	drinksKeyPrefix = "drinks:"
	fundiKeyPrefix  = "fundi:"
	memoryKeyPrefix = "memory:"

	// rooms and their tallies expire on their own if the server dies mid-game
	roomExpiration = 2 * time.Hour
)

// RoomData is the redis mirror of a room. It is informational only: hands and
// the pyramid are never persisted and a room is not restored from it.
type RoomData struct {
	Code          string   `json:"code"`
	Host          string   `json:"host"`
	Players       []string `json:"players"`
	Started       bool     `json:"started"`
	Phase         string   `json:"phase,omitempty"`
	RevealedIndex int      `json:"revealed_index"`
	PyramidTotal  int      `json:"pyramid_total"`
	CreatedAt     int64    `json:"created_at"`
}

// DrinkRecord is one drink owed by a player
type DrinkRecord struct {
	Sips  int
	Fundi bool
}

// PlayerDrinks is the per-room tally for one player
type PlayerDrinks struct {
	Player string `json:"player"`
	Sips   int    `json:"sips"`
	Fundis int    `json:"fundis"`
	// Memory is nil until the player submitted the memory test
	Memory *bool `json:"memory,omitempty"`
}

// RedisStore keeps room mirrors and drink tallies in redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store on top of client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping checks the connection
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// --- rooms ---

// SaveRoom writes the room mirror and refreshes its expiry
func (rs *RedisStore) SaveRoom(ctx context.Context, roomCode string, data *RoomData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("serialize room %s: %w", roomCode, err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+roomCode, jsonData, roomExpiration).Err()
}

// DeleteRoom removes the mirror and every tally of the room
func (rs *RedisStore) DeleteRoom(ctx context.Context, code string) error {
	return rs.client.Del(ctx,
		roomKeyPrefix+code,
		drinksKeyPrefix+code,
		fundiKeyPrefix+code,
		memoryKeyPrefix+code,
	).Err()
}

// GetAllRoomCodes lists the codes of all mirrored rooms, sorted
func (rs *RedisStore) GetAllRoomCodes(ctx context.Context) ([]string, error) {
	var codes []string
	iter := rs.client.Scan(ctx, 0, roomKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		codes = append(codes, strings.TrimPrefix(iter.Val(), roomKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(codes)
	return codes, nil
}

// --- tallies ---

// RecordDrink adds a drink to the player's tally
func (rs *RedisStore) RecordDrink(ctx context.Context, code, player string, d DrinkRecord) error {
	pipe := rs.client.TxPipeline()
	pipe.HIncrBy(ctx, drinksKeyPrefix+code, player, int64(d.Sips))
	pipe.Expire(ctx, drinksKeyPrefix+code, roomExpiration)
	if d.Fundi {
		pipe.HIncrBy(ctx, fundiKeyPrefix+code, player, 1)
		pipe.Expire(ctx, fundiKeyPrefix+code, roomExpiration)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RecordMemory stores the memory test outcome of player
func (rs *RedisStore) RecordMemory(ctx context.Context, code, player string, ok bool) error {
	pipe := rs.client.TxPipeline()
	pipe.HSet(ctx, memoryKeyPrefix+code, player, ok)
	pipe.Expire(ctx, memoryKeyPrefix+code, roomExpiration)
	_, err := pipe.Exec(ctx)
	return err
}

// GetDrinkStats returns the tallies of a room, heaviest drinker first
func (rs *RedisStore) GetDrinkStats(ctx context.Context, code string) ([]PlayerDrinks, error) {
	pipe := rs.client.Pipeline()
	drinksCmd := pipe.HGetAll(ctx, drinksKeyPrefix+code)
	fundiCmd := pipe.HGetAll(ctx, fundiKeyPrefix+code)
	memoryCmd := pipe.HGetAll(ctx, memoryKeyPrefix+code)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	byPlayer := make(map[string]*PlayerDrinks)
	entry := func(name string) *PlayerDrinks {
		if p, ok := byPlayer[name]; ok {
			return p
		}
		p := &PlayerDrinks{Player: name}
		byPlayer[name] = p
		return p
	}

	for name, v := range drinksCmd.Val() {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("drinks of %s: %w", name, err)
		}
		entry(name).Sips = n
	}
	for name, v := range fundiCmd.Val() {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("fundis of %s: %w", name, err)
		}
		entry(name).Fundis = n
	}
	for name, v := range memoryCmd.Val() {
		ok := v == "1"
		entry(name).Memory = &ok
	}

	stats := make([]PlayerDrinks, 0, len(byPlayer))
	for _, p := range byPlayer {
		stats = append(stats, *p)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Fundis != stats[j].Fundis {
			return stats[i].Fundis > stats[j].Fundis
		}
		if stats[i].Sips != stats[j].Sips {
			return stats[i].Sips > stats[j].Sips
		}
		return stats[i].Player < stats[j].Player
	})
	return stats, nil
}
