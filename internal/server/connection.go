package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/piramiden/internal/logger"
	"github.com/palemoky/piramiden/internal/protocol"
)

// handleWebSocket admits and upgrades a connection
func (s *Server) handleWebSocket(c *gin.Context) {
	r := c.Request
	clientIP := GetClientIP(r)

	// maintenance first
	if s.IsMaintenanceMode() {
		logger.LogInfo("🔧 maintenance mode, refusing %s", clientIP)
		c.String(http.StatusServiceUnavailable, "Server is under maintenance, please try again later")
		return
	}

	// the slot is released when the client disconnects
	select {
	case s.semaphore <- struct{}{}:
	default:
		logger.LogWarn("🚫 connection limit (%d) reached, refusing %s", s.maxConnections, clientIP)
		c.String(http.StatusServiceUnavailable, "Server Full")
		return
	}
	admitted := false
	defer func() {
		if !admitted {
			s.releaseSlot()
		}
	}()

	if !s.ipFilter.IsAllowed(clientIP) {
		logger.LogWarn("🚫 IP %s rejected by filter", clientIP)
		c.String(http.StatusForbidden, "Forbidden")
		return
	}

	if !s.originChecker.Check(r) {
		logger.LogWarn("🚫 origin %q rejected (IP: %s)", r.Header.Get("Origin"), clientIP)
		c.String(http.StatusForbidden, "Origin not allowed")
		return
	}

	if !s.rateLimiter.Allow(clientIP) {
		logger.LogWarn("🚫 IP %s is connecting too fast", clientIP)
		c.String(http.StatusTooManyRequests, "Too Many Requests")
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, r, nil)
	if err != nil {
		logger.LogWarn("websocket upgrade failed for %s: %v", clientIP, err)
		return
	}
	admitted = true

	client := NewClient(s, conn)
	client.IP = clientIP
	s.registerClient(client)

	client.SendMessage(protocol.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		ConnID: client.ID,
	}))

	logger.LogInfo("✅ %s connected from %s", client.ID, clientIP)

	go client.ReadPump()
	go client.WritePump()
}

func (s *Server) releaseSlot() {
	select {
	case <-s.semaphore:
	default:
	}
}

func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	_, ok := s.clients[client.ID]
	delete(s.clients, client.ID)
	s.clientsMu.Unlock()

	if ok {
		s.releaseSlot()
		logger.LogInfo("❌ %s (%s) disconnected", client.ID, client.GetName())
	}
}
