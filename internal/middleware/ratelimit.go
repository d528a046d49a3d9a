package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// fallbackRate caps unauthenticated endpoints when the configured rate cannot
// be parsed, so a bad override never disables the limiter.
const fallbackRate = "5-M"

// RateLimitByIP builds a per-IP rate limiting middleware from a ulule
// formatted rate such as "5-M" (five per minute). Counters live in process
// memory, so each instance enforces the rate independently.
func RateLimitByIP(formatted string) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		slog.Warn("Invalid rate limit format, using fallback",
			slog.String("rate", formatted),
			slog.String("fallback", fallbackRate),
			slog.String("error", err.Error()))
		rate, _ = limiter.NewRateFromFormatted(fallbackRate)
	}
	ipLimiter := limiter.New(memory.NewStore(), rate)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		limitCtx, err := ipLimiter.Get(c.Request.Context(), ip)
		if err != nil {
			GetLoggerFromCtx(c.Request.Context()).Error("Rate limit lookup failed",
				slog.String("ip", ip), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error during rate limit check"})
			return
		}

		if limitCtx.Reached {
			GetLoggerFromCtx(c.Request.Context()).Warn("Rate limit exceeded",
				slog.String("ip", ip),
				slog.Int64("limit", limitCtx.Limit))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}

		c.Next()
	}
}
