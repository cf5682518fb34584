// Package server exposes the room directory over websocket and a small HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/piramiden/internal/clock"
	"github.com/palemoky/piramiden/internal/config"
	"github.com/palemoky/piramiden/internal/game/engine"
	"github.com/palemoky/piramiden/internal/game/room"
	"github.com/palemoky/piramiden/internal/logger"
	"github.com/palemoky/piramiden/internal/server/handler"
	"github.com/palemoky/piramiden/internal/server/storage"
)

const redisPingTimeout = 5 * time.Second

// statsReader serves /rooms/:code/drinks
type statsReader interface {
	GetDrinkStats(ctx context.Context, code string) ([]storage.PlayerDrinks, error)
}

// Server owns the connections, the room directory and the HTTP surface
type Server struct {
	config    *config.Config
	redis     *redis.Client // nil when redis is disabled
	stats     statsReader   // nil when redis is disabled
	rooms     *room.Directory
	clients   map[string]*Client
	clientsMu sync.RWMutex
	handler   *handler.Handler
	upgrader  websocket.Upgrader

	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	ipFilter       *IPFilter

	maxConnections int
	semaphore      chan struct{}

	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	httpServer *http.Server
}

// NewServer wires a server from cfg. Redis is optional; when configured it
// must answer a ping.
func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:         cfg,
		clients:        make(map[string]*Client),
		rateLimiter:    NewRateLimiter(cfg.Security.RateLimit, &clock.DefaultClock{}),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond, cfg.Security.MessageLimit.Burst),
		ipFilter:       NewIPFilter(cfg.Security.AllowedIPs, cfg.Security.BlockedIPs),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	opts := room.Options{
		Game: engine.Options{
			ReviewTimeout: cfg.Game.ReviewTimeoutDuration(),
			RoundTimeout:  cfg.Game.RoundTimeoutDuration(),
			LogLimit:      cfg.Game.LogLimit,
			LogTail:       cfg.Game.SnapshotLogTail,
		},
		MinPlayers: cfg.Game.MinPlayers,
		MaxPlayers: cfg.Game.MaxPlayers,
	}

	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		store := storage.NewRedisStore(rdb)
		if err := store.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Redis.Addr, err)
		}

		purgeStaleRooms(ctx, store)

		s.redis = rdb
		s.stats = store
		opts.Store = store
	} else {
		logger.LogWarn("⚠️ redis disabled: rooms are not mirrored and drink stats are unavailable")
	}

	s.rooms = room.NewDirectory(opts)
	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server: s,
		Rooms:  s.rooms,
	})

	logger.LogInfo("🔒 security: connect=%d/s, messages=%d/s (burst %d), max connections=%d",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.MessageLimit.MaxPerSecond,
		cfg.Security.MessageLimit.Burst, cfg.Server.MaxConnections)

	return s, nil
}

// purgeStaleRooms drops mirrors left behind by an earlier process. Rooms
// live in memory only, so none of them can be joined any more.
func purgeStaleRooms(ctx context.Context, store *storage.RedisStore) {
	codes, err := store.GetAllRoomCodes(ctx)
	if err != nil {
		logger.LogWarn("⚠️ listing stale rooms in redis failed: %v", err)
		return
	}
	for _, code := range codes {
		if err := store.DeleteRoom(ctx, code); err != nil {
			logger.LogWarn("⚠️ dropping stale room %s failed: %v", code, err)
			return
		}
	}
	if len(codes) > 0 {
		logger.LogInfo("🧹 dropped %d stale rooms from redis", len(codes))
	}
}

// Start serves HTTP until Shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go s.monitorStats()

	logger.LogInfo("🚀 listening on ws://%s/ws (CPUs: %d)", addr, runtime.NumCPU())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Rooms returns the room directory
func (s *Server) Rooms() *room.Directory {
	return s.rooms
}
