package constants

import (
	"fmt"
	"time"
)

// Redis cache configuration
// Pattern: clubtrips:{module}:{operation}:{identifier}:{params?}

// Semi-static data (changes occasionally)
const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour // event details
)

const (
	CACHE_PREFIX = "clubtrips"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENT_DETAIL = CACHE_PREFIX + ":events:detail:id:" // + event-id
)

const (
	TTL_EVENT_DETAIL = TTL_SEMI_STATIC_MEDIUM
)

// ================== RATE LIMITING ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit:" // + type:identifier
)

// ================== INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_EVENT_ALL = CACHE_PREFIX + ":events:*"
)

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildRateLimitKey(limitType, identifier string) string {
	return fmt.Sprintf("%s%s:%s", RATE_LIMIT_PREFIX, limitType, identifier)
}
