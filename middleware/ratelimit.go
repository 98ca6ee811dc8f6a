package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type visitor struct {
	limiter  *time.Ticker
	lastSeen time.Time
}

type rateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
}

// RateLimit 速率限制中间件（按客户端IP）
func RateLimit(requestsPerMinute int) gin.HandlerFunc {
	rl := &rateLimiter{visitors: make(map[string]*visitor)}

	// 清理过期访问者
	go rl.cleanupVisitors()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		rl.mu.Lock()

		v, exists := rl.visitors[ip]
		if !exists {
			ticker := time.NewTicker(time.Minute / time.Duration(requestsPerMinute))
			rl.visitors[ip] = &visitor{ticker, time.Now()}
			rl.mu.Unlock()
			c.Next()
			return
		}

		v.lastSeen = time.Now()
		rl.mu.Unlock()

		select {
		case <-v.limiter.C:
			c.Next()
		default:
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "请求过于频繁，请稍后再试",
			})
			c.Abort()
		}
	}
}

func (rl *rateLimiter) cleanupVisitors() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				v.limiter.Stop()
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
