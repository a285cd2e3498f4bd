package ratelimit

import (
	"context"
	"fmt"
	"slices"
	"time"

	"clubtrips/internal/shared/config"
	"clubtrips/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

type RateLimitType string

const (
	RateLimitTypeDefault         RateLimitType = "default"
	RateLimitTypePublic          RateLimitType = "public"
	RateLimitTypeBooking         RateLimitType = "booking"
	RateLimitTypeBookingCritical RateLimitType = "booking_critical"
	RateLimitTypeAdmin           RateLimitType = "admin"
	RateLimitTypeUser            RateLimitType = "user"
	RateLimitTypeHealth          RateLimitType = "health"
)

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// slidingWindow trims the window, then records the request only when the
// limit has not been reached. Returns {allowed, count, remaining}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_seconds = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current_count = redis.call('ZCARD', key)
	if current_count >= limit then
		redis.call('EXPIRE', key, window_seconds)
		return {0, current_count, 0}
	end

	redis.call('ZADD', key, now, member)
	redis.call('EXPIRE', key, window_seconds)

	return {1, current_count + 1, limit - current_count - 1}
`)

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client *redis.Client
	config config.RateLimitConfig
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: cfg,
		now:    time.Now,
	}
}

// IsAllowed checks whether a request from clientIP may proceed
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)

	if !r.config.Enabled || r.client == nil || r.isWhitelisted(clientIP) {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: r.now().Add(r.config.WindowDuration).Unix(),
		}, nil
	}

	key := constants.BuildRateLimitKey(string(limitType), clientIP)
	return r.checkLimit(ctx, key, limit)
}

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int) (*Result, error) {
	now := r.now()
	windowStart := now.Add(-r.config.WindowDuration)

	res, err := slidingWindow.Run(ctx, r.client, []string{key},
		windowStart.UnixNano(),
		now.UnixNano(),
		limit,
		int64(r.config.WindowDuration.Seconds()),
		fmt.Sprintf("%d", now.UnixNano()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis eval failed: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	return &Result{
		Allowed:   res[0] == 1,
		Limit:     limit,
		Remaining: int(res[2]),
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypePublic:
		return r.config.PublicRequests
	case RateLimitTypeBooking:
		return r.config.BookingRequests
	case RateLimitTypeBookingCritical:
		return r.config.BookingCriticalRequests
	case RateLimitTypeAdmin:
		return r.config.AdminRequests
	case RateLimitTypeUser:
		return r.config.UserRequests
	case RateLimitTypeHealth:
		return r.config.HealthRequests
	default:
		return r.config.DefaultRequests
	}
}

func (r *RateLimiter) isWhitelisted(ip string) bool {
	return slices.Contains(r.config.WhitelistedIPs, ip)
}
