package server

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/palemoky/piramiden/internal/clock"
	"github.com/palemoky/piramiden/internal/config"
	"github.com/palemoky/piramiden/internal/logger"
)

const (
	// used when the config leaves the idle expiry unset
	defaultIdleExpiry = 10 * time.Minute

	// a client is dropped after this many rejected frames
	maxMessageWarnings = 5
)

// RateLimiter counts connection attempts per IP in a one-second and a
// one-minute window. Going over either bans the IP for the configured time.
type RateLimiter struct {
	maxPerSecond int
	maxPerMinute int
	ban          time.Duration
	idleExpiry   time.Duration
	clock        clock.Clock

	mu  sync.Mutex
	ips map[string]*attempts
}

type window struct {
	start time.Time
	n     int
}

// hit counts one attempt, starting a fresh window once size has passed
func (w *window) hit(now time.Time, size time.Duration) int {
	if now.Sub(w.start) >= size {
		w.start, w.n = now, 0
	}
	w.n++
	return w.n
}

type attempts struct {
	second      window
	minute      window
	lastSeen    time.Time
	bannedUntil time.Time
}

// NewRateLimiter creates a limiter and starts the loop that forgets idle IPs
func NewRateLimiter(cfg config.RateLimitConfig, clk clock.Clock) *RateLimiter {
	rl := &RateLimiter{
		maxPerSecond: cfg.MaxPerSecond,
		maxPerMinute: cfg.MaxPerMinute,
		ban:          cfg.BanDurationTime(),
		idleExpiry:   cfg.IdleExpiryTime(),
		clock:        clk,
		ips:          make(map[string]*attempts),
	}
	if rl.idleExpiry <= 0 {
		rl.idleExpiry = defaultIdleExpiry
	}

	go rl.sweepLoop()

	return rl
}

// Allow records one attempt from ip and reports whether it may proceed.
// Attempts made while banned are refused without counting.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	a, ok := rl.ips[ip]
	if !ok {
		a = &attempts{}
		rl.ips[ip] = a
	}
	a.lastSeen = now

	if now.Before(a.bannedUntil) {
		return false
	}

	perSecond := a.second.hit(now, time.Second)
	perMinute := a.minute.hit(now, time.Minute)
	if perSecond > rl.maxPerSecond || perMinute > rl.maxPerMinute {
		a.bannedUntil = now.Add(rl.ban)
		logger.LogWarn("⚠️ IP %s banned for %v after %d attempts this minute", ip, rl.ban, perMinute)
		return false
	}
	return true
}

// sweep forgets IPs that were idle longer than the idle expiry and are not
// banned. It returns how many were dropped.
func (rl *RateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	dropped := 0
	for ip, a := range rl.ips {
		if now.Sub(a.lastSeen) > rl.idleExpiry && !now.Before(a.bannedUntil) {
			delete(rl.ips, ip)
			dropped++
		}
	}
	return dropped
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.idleExpiry / 2)
	defer ticker.Stop()

	for range ticker.C {
		if n := rl.sweep(); n > 0 {
			logger.LogDebug("rate limiter forgot %d idle IPs", n)
		}
	}
}

// --- origin ---

// OriginChecker validates the Origin header of websocket upgrades. Origins
// compare as lowercase scheme://host[:port].
type OriginChecker struct {
	allowed  map[string]bool
	allowAll bool
}

// NewOriginChecker allows the given origins; "*" allows all
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]bool)}

	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		if o, ok := normalizeOrigin(origin); ok {
			oc.allowed[o] = true
		}
	}
	return oc
}

func normalizeOrigin(origin string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), true
}

// Check reports whether the request origin is allowed. Requests without an
// Origin header come from non-browser clients and pass.
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	o, ok := normalizeOrigin(origin)
	return ok && oc.allowed[o]
}

// Origins lists the allowed origins, or ["*"]
func (oc *OriginChecker) Origins() []string {
	if oc.allowAll {
		return []string{"*"}
	}
	out := make([]string, 0, len(oc.allowed))
	for o := range oc.allowed {
		out = append(out, o)
	}
	return out
}

// --- IP filter ---

// IPFilter admits IPs from a fixed allow list and block list. An empty allow
// list admits everyone who is not blocked.
type IPFilter struct {
	allowed map[string]bool
	blocked map[string]bool
}

// NewIPFilter builds a filter from the configured lists
func NewIPFilter(allowed, blocked []string) *IPFilter {
	f := &IPFilter{
		allowed: make(map[string]bool, len(allowed)),
		blocked: make(map[string]bool, len(blocked)),
	}
	for _, ip := range allowed {
		f.allowed[strings.TrimSpace(ip)] = true
	}
	for _, ip := range blocked {
		f.blocked[strings.TrimSpace(ip)] = true
	}
	return f
}

// IsAllowed reports whether ip may connect. Blocking wins over allowing.
func (f *IPFilter) IsAllowed(ip string) bool {
	if f.blocked[ip] {
		return false
	}
	return len(f.allowed) == 0 || f.allowed[ip]
}

// GetClientIP returns the originating client IP, honouring proxy headers
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// --- message rate ---

// MessageRateLimiter is a token bucket per connected client
type MessageRateLimiter struct {
	limits map[string]*messageRate
	mu     sync.Mutex

	perSecond rate.Limit
	burst     int
}

type messageRate struct {
	limiter  *rate.Limiter
	warnings int
}

// NewMessageRateLimiter allows maxPerSecond frames on average with bursts up to burst
func NewMessageRateLimiter(maxPerSecond, burst int) *MessageRateLimiter {
	if burst < maxPerSecond {
		burst = maxPerSecond
	}
	return &MessageRateLimiter{
		limits:    make(map[string]*messageRate),
		perSecond: rate.Limit(maxPerSecond),
		burst:     burst,
	}
}

// AllowMessage takes a token for clientID. warning is set when the bucket
// is nearly empty or the frame was rejected.
func (ml *MessageRateLimiter) AllowMessage(clientID string) (allowed bool, warning bool) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	mr, exists := ml.limits[clientID]
	if !exists {
		mr = &messageRate{limiter: rate.NewLimiter(ml.perSecond, ml.burst)}
		ml.limits[clientID] = mr
	}

	if !mr.limiter.Allow() {
		mr.warnings++
		return false, true
	}

	return true, mr.limiter.Tokens() < float64(ml.burst)/4
}

// GetWarningCount returns how many frames of clientID were rejected
func (ml *MessageRateLimiter) GetWarningCount(clientID string) int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if mr, ok := ml.limits[clientID]; ok {
		return mr.warnings
	}
	return 0
}

// RemoveClient forgets clientID
func (ml *MessageRateLimiter) RemoveClient(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.limits, clientID)
}
