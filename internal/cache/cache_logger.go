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

// InvalidateQuestionCache invalidates the homework-question and dashboard
// caches touched by an upload.
func InvalidateQuestionCache(ctx context.Context, cm *CacheManager, questionID uint, uploaderID, classLevel string) {
	SafeDelete(ctx, cm.Question, fmt.Sprintf("id:%d", questionID))
	SafeInvalidatePattern(ctx, cm.Question, fmt.Sprintf("uploader:%s:*", uploaderID))
	SafeInvalidatePattern(ctx, cm.Question, fmt.Sprintf("class:%s:*", classLevel))
	SafeInvalidatePattern(ctx, cm.Dashboard, "*")
}

// InvalidateAnswerCache invalidates a student's answer and dashboard caches
// after a submission or regrade.
func InvalidateAnswerCache(ctx context.Context, cm *CacheManager, studentID string, questionID uint) {
	SafeInvalidatePattern(ctx, cm.Answer, fmt.Sprintf("student:%s:*", studentID))
	SafeDelete(ctx, cm.Answer, fmt.Sprintf("latest:%s:%d", studentID, questionID))
	SafeInvalidatePattern(ctx, cm.Dashboard, "*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("student:%s:*", studentID))
}
