package cache

import (
	"context"
	"log/slog"
	"strings"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// SchoolKey normalizes a school name into a cache key
func SchoolKey(school string) string {
	return "school:" + strings.ToLower(strings.TrimSpace(school))
}

// InvalidateDashboardCache drops the cross-school stats and the faculty stats of one school
func InvalidateDashboardCache(ctx context.Context, cm *CacheManager, school string) {
	if cm == nil {
		return
	}
	SafeInvalidatePattern(ctx, cm.Stats, "*")
	if school == "" {
		SafeInvalidatePattern(ctx, cm.Faculty, "*")
		return
	}
	SafeDelete(ctx, cm.Faculty, SchoolKey(school))
}
