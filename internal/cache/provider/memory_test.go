package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deletionguard/internal/cache/invalidation"
)

func TestMemoryProvider(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()
	tag := invalidation.Key{Kind: invalidation.KindTag, Value: "post-42"}
	path := invalidation.Key{Kind: invalidation.KindPath, Value: "/blog"}
	p.Mark(tag, path)

	cached, err := p.IsCached(ctx, tag)
	require.NoError(t, err)
	assert.True(t, cached)

	require.NoError(t, p.InvalidateTag(ctx, "post-42"))
	cached, _ = p.IsCached(ctx, tag)
	assert.False(t, cached)

	require.NoError(t, p.InvalidatePath(ctx, "post-42"), "unknown keys are a no-op")
	cached, _ = p.IsCached(ctx, path)
	assert.True(t, cached, "tags and paths are separate namespaces")
	assert.Equal(t, 1, p.Len())
}

func TestMemoryProvider_EndToEnd(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()
	req := invalidation.Request{EntityID: "42", Slug: "Intro to X", CategorySlug: "guides"}
	tags, paths := invalidation.Closure(req)
	for _, v := range tags {
		p.Mark(invalidation.Key{Kind: invalidation.KindTag, Value: v})
	}
	for _, v := range paths {
		p.Mark(invalidation.Key{Kind: invalidation.KindPath, Value: v})
	}
	p.Mark(invalidation.Key{Kind: invalidation.KindPath, Value: "/about"})

	svc, err := invalidation.New(p, invalidation.WithProber(p), invalidation.WithRetry(2, time.Millisecond))
	require.NoError(t, err)

	result, err := svc.Invalidate(ctx, req, invalidation.Options{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Verification.Verified)
	assert.Equal(t, 0, result.RetryCount)
	assert.Equal(t, 1, p.Len(), "unrelated keys survive")
}
