package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/palemoky/piramiden/internal/logger"
	"github.com/palemoky/piramiden/internal/server/storage"
)

const qrSize = 320

// Router builds the HTTP surface: websocket endpoint, health, invite QR and drink stats
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
		MaxAge: 12 * time.Hour,
	}
	if origins := s.originChecker.Origins(); len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/ws", s.handleWebSocket)
	r.GET("/health", s.handleHealth)

	rooms := r.Group("/rooms/:code")
	rooms.GET("/qr", s.handleRoomQR)
	rooms.GET("/drinks", s.handleRoomDrinks)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.L().Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"online":      s.GetOnlineCount(),
		"rooms":       s.rooms.RoomCount(),
		"activeGames": s.rooms.GetActiveGamesCount(),
		"maintenance": s.IsMaintenanceMode(),
	})
}

// handleRoomQR renders a PNG that opens the client with the room code filled in
func (s *Server) handleRoomQR(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if s.rooms.GetRoom(code) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	link := strings.TrimRight(s.config.Server.PublicURL, "/") + "/?room=" + url.QueryEscape(code)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		logger.LogError("qr for %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "qr generation failed"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// handleRoomDrinks returns the drink tallies of a room, heaviest drinkers first
func (s *Server) handleRoomDrinks(c *gin.Context) {
	if s.stats == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stats unavailable"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	players, err := s.stats.GetDrinkStats(c.Request.Context(), code)
	if err != nil {
		logger.LogError("drink stats for %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats lookup failed"})
		return
	}
	if players == nil {
		players = []storage.PlayerDrinks{}
	}

	c.JSON(http.StatusOK, gin.H{"room": code, "players": players})
}
