package cache

import (
	"context"
	"fmt"
	"log/slog"
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

// CourseKey is the cache key of a course detail read
func CourseKey(courseID uint) string {
	return fmt.Sprintf("id:%d", courseID)
}

// StatsKey is the cache key of an actor's dashboard counters
func StatsKey(userID string) string {
	return fmt.Sprintf("dashboard:%s", userID)
}

// InvalidateCourseCache drops a course detail and every dashboard that may
// count it
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint) {
	SafeDelete(ctx, cm.Course, CourseKey(courseID))
	SafeInvalidatePattern(ctx, cm.Stats, "dashboard:*")
}

// InvalidateStats drops all cached dashboards
func InvalidateStats(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Stats, "dashboard:*")
}

// InvalidateCourses drops every cached course detail. Used when data joined
// into course reads changes (category names, instructor names).
func InvalidateCourses(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Course, "id:*")
}
