package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"clubtrips/internal/shared/utils/response"
	"clubtrips/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware applies the limit class derived from the matched route
func Middleware(rateLimiter *RateLimiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getRateLimitType(c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			// Fail open: a Redis outage must not take booking down with it
			log.WithError(err).WarnContext(c.Request.Context(), "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if !result.Allowed {
			log.LogRateLimitExceeded(c.Request.Context(), clientIP, c.FullPath())
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded", map[string]interface{}{
				"limit":      result.Limit,
				"reset_time": result.ResetTime,
			})
			return
		}

		c.Next()
	}
}

func getRateLimitType(path string) RateLimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"):
		return RateLimitTypeHealth

	case strings.Contains(path, "/admin/"):
		return RateLimitTypeAdmin

	// Writes that touch the booking ledger
	case strings.HasSuffix(path, "/bookings") && !strings.Contains(path, "/users/"),
		strings.Contains(path, "/bookings/") && strings.HasSuffix(path, "/cancel"):
		return RateLimitTypeBookingCritical

	case strings.Contains(path, "/bookings"),
		strings.HasSuffix(path, "/my-booking"),
		strings.HasSuffix(path, "/quote"):
		return RateLimitTypeBooking

	case strings.Contains(path, "/users/"):
		return RateLimitTypeUser

	case strings.Contains(path, "/events"):
		return RateLimitTypePublic

	default:
		return RateLimitTypeDefault
	}
}

// getClientIP extracts the real client IP
func getClientIP(c *gin.Context) string {
	if xForwardedFor := c.GetHeader("X-Forwarded-For"); xForwardedFor != "" {
		ip := strings.TrimSpace(strings.Split(xForwardedFor, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := c.GetHeader("X-Real-IP"); net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}
