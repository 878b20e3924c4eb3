package http

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"mesto-api/internal/domain"
)

const subjectKey = "authSubject"

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requireAuth terminates any request lacking a valid bearer token; the
// handler behind it never runs. On success the token's subject is stored on
// the request context.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := h.subjectFromHeader(c)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Set(subjectKey, subject)
		c.Next()
	}
}

func (h *Handler) subjectFromHeader(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if header == "" || !found || token == "" {
		return "", domain.E(domain.KindUnauthorized, "authorization error")
	}
	return h.tokens.Verify(token)
}

// subject returns the authenticated user id; requireAuth must have run.
func (h *Handler) subject(c *gin.Context) string {
	return c.GetString(subjectKey)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

// rateLimitByIP caps credential-guessing traffic per client IP on the auth
// endpoints.
func rateLimitByIP(rps float64, burst int) gin.HandlerFunc {
	rl := &ipRateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
	go rl.cleanup()

	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many requests"})
			return
		}
		c.Next()
	}
}

func (rl *ipRateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *ipRateLimiter) cleanup() {
	for range time.Tick(time.Minute) {
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 10*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
