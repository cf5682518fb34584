package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/palemoky/piramiden/internal/logger"
	"github.com/palemoky/piramiden/internal/protocol"
)

const (
	statsInterval   = 30 * time.Second
	httpStopTimeout = 5 * time.Second
)

// monitorStats logs load figures periodically
func (s *Server) monitorStats() {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for range ticker.C {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		logger.LogInfo("📊 online: %d | rooms: %d | games: %d | goroutines: %d | connections: %d/%d | mem: %.2f MB",
			s.GetOnlineCount(),
			s.rooms.RoomCount(),
			s.rooms.GetActiveGamesCount(),
			runtime.NumGoroutine(),
			len(s.semaphore),
			s.maxConnections,
			float64(m.Alloc)/1024/1024)
	}
}

// EnterMaintenanceMode stops new connections and new rooms. Running games continue.
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.BroadcastToLobby(protocol.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance,
		"👷 Onderhoud: er kunnen even geen nieuwe rooms gemaakt worden"))

	logger.LogInfo("🔧 maintenance mode: no new connections or rooms")
}

// IsMaintenanceMode reports whether the server is in maintenance mode
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown enters maintenance mode, waits up to timeout for running
// games to reach the memory test, then shuts down.
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(s.config.Game.ShutdownCheckIntervalDuration())
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		active := s.rooms.GetActiveGamesCount()
		if active == 0 {
			logger.LogInfo("✅ no games running, shutting down in %ds", s.config.Game.RoomCleanupDelay)
			s.Broadcast(protocol.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance,
				fmt.Sprintf("🚧 Server stopt over %d seconden voor onderhoud", s.config.Game.RoomCleanupDelay)))
			break
		}
		logger.LogInfo("⏳ waiting for %d games to finish...", active)
		<-ticker.C
	}

	if active := s.rooms.GetActiveGamesCount(); active > 0 {
		logger.LogWarn("⚠️ timed out with %d games still running, forcing shutdown", active)
	}

	s.Shutdown()
}

// Shutdown closes every connection, the HTTP listener and redis
func (s *Server) Shutdown() {
	time.Sleep(s.config.Game.RoomCleanupDelayDuration())

	s.clientsMu.RLock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.RUnlock()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), httpStopTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			logger.LogWarn("http shutdown: %v", err)
		}
	}

	if s.redis != nil {
		_ = s.redis.Close()
	}

	logger.LogInfo("server stopped")
}
