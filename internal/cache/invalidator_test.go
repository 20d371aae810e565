package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestInvalidator(t *testing.T) (*RedisInvalidator, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisInvalidator(client, "portal:views:", zap.NewNop()), mr
}

func TestInvalidateDeletesTaggedKeys(t *testing.T) {
	inv, mr := newTestInvalidator(t)

	tag := TemplateItemsTag("tpl1")
	require.NoError(t, mr.Set("portal:views:"+tag, "cached-view"))
	require.NoError(t, mr.Set("portal:views:"+TemplateItemsTag("tpl2"), "other-view"))

	inv.Invalidate(context.Background(), tag)

	assert.False(t, mr.Exists("portal:views:"+tag))
	// Unrelated scopes are left alone.
	assert.True(t, mr.Exists("portal:views:"+TemplateItemsTag("tpl2")))
}

func TestInvalidateMultipleTags(t *testing.T) {
	inv, mr := newTestInvalidator(t)

	tags := []string{ProgramMealsTag("prog1", 3), ProgramTag("prog1")}
	for _, tag := range tags {
		require.NoError(t, mr.Set("portal:views:"+tag, "v"))
	}

	inv.Invalidate(context.Background(), tags...)

	for _, tag := range tags {
		assert.False(t, mr.Exists("portal:views:"+tag))
	}
}

func TestInvalidateSurvivesBackendFailure(t *testing.T) {
	inv, mr := newTestInvalidator(t)
	mr.Close()

	// Fire-and-forget: a dead backend must not panic or error out the caller.
	assert.NotPanics(t, func() {
		inv.Invalidate(context.Background(), TemplateItemsTag("tpl1"))
	})
}

func TestInvalidateNoTagsIsNoop(t *testing.T) {
	inv, _ := newTestInvalidator(t)
	assert.NotPanics(t, func() { inv.Invalidate(context.Background()) })
}

func TestScopeTags(t *testing.T) {
	assert.Equal(t, "template-items-abc", TemplateItemsTag("abc"))
	assert.Equal(t, "program-meals-p1-day-4", ProgramMealsTag("p1", 4))
	assert.Equal(t, "meal-items-m9", MealItemsTag("m9"))
}
