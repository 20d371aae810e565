// Package cache provides the view-invalidation signal fired after ordered
// collection mutations. Views cache rendered lists under scope-derived tags;
// deleting the tag after a successful write keeps stale reads from being
// served. Invalidation is fire-and-forget: a failure is logged, never rolled
// back into the data mutation that already happened.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultTimeout = 2 * time.Second

// Scope tags. Every ordered scope gets its own tag so an invalidation only
// evicts the views it actually changed.
func TemplateItemsTag(templateID string) string {
	return "template-items-" + templateID
}

func TemplateListTag(coachID string) string {
	return "templates-" + coachID
}

func ProgramMealsTag(programID string, dayNumber int) string {
	return fmt.Sprintf("program-meals-%s-day-%d", programID, dayNumber)
}

func ProgramTag(programID string) string {
	return "program-" + programID
}

func MealItemsTag(mealID string) string {
	return "meal-items-" + mealID
}

// Invalidator is the revalidation capability consumed by services.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string)
}

// RedisInvalidator deletes tag keys from a shared Redis so every app instance
// sees the eviction.
type RedisInvalidator struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisInvalidator creates an invalidator on an existing Redis client.
// Prefix namespaces the tag keys, e.g. "portal:views:".
func NewRedisInvalidator(client *redis.Client, prefix string, logger *zap.Logger) *RedisInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisInvalidator{client: client, prefix: prefix, logger: logger}
}

// Invalidate deletes the given tag keys. Errors are logged and swallowed; the
// data mutation this signal follows has already been applied.
func (r *RedisInvalidator) Invalidate(ctx context.Context, tags ...string) {
	if len(tags) == 0 {
		return
	}
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = r.prefix + tag
	}

	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultTimeout)
	defer cancel()

	if err := r.client.Del(opCtx, keys...).Err(); err != nil {
		r.logger.Warn("cache invalidation failed",
			zap.Strings("tags", tags),
			zap.Error(err),
		)
	}
}

// NoopInvalidator satisfies Invalidator without a cache backend. Used in
// tests and when Redis is not configured.
type NoopInvalidator struct{}

func (NoopInvalidator) Invalidate(context.Context, ...string) {}
