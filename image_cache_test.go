package sheetgrid

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ ms float64 }

func (c *fakeClock) NowMs() float64 { return c.ms }

type fakeImage struct {
	w, h   int
	closed bool
}

func (i *fakeImage) Width() int  { return i.w }
func (i *fakeImage) Height() int { return i.h }
func (i *fakeImage) Close() error {
	i.closed = true
	return nil
}

// waitUntil polls ProcessCompletions until pred reports true or the
// deadline passes, since the resolver runs on its own goroutine.
func waitUntil(c *ImageCache, pred func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.ProcessCompletions()
		if pred() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestImageCacheResolvesAndCachesReady(t *testing.T) {
	resolver := func(id string) (ImageResolveResult, error) {
		return ImageResolveResult{Decoded: &fakeImage{w: 10, h: 10}}, nil
	}
	clock := &fakeClock{}
	c := NewImageCache(10, resolver, nil, clock, nil)

	entry := c.Get("img1")
	assert.Equal(t, ImagePending, entry.State)

	ok := waitUntil(c, func() bool { return c.Get("img1").State != ImagePending })
	require.True(t, ok)
	assert.Equal(t, ImageReady, c.Get("img1").State)
}

func TestImageCacheMissingResult(t *testing.T) {
	resolver := func(id string) (ImageResolveResult, error) {
		return ImageResolveResult{Missing: true}, nil
	}
	c := NewImageCache(10, resolver, nil, &fakeClock{}, nil)
	c.Get("gone")
	ok := waitUntil(c, func() bool { return c.Get("gone").State != ImagePending })
	require.True(t, ok)
	assert.Equal(t, ImageMissing, c.Get("gone").State)
}

func TestImageCacheResolverErrorSetsRetryWindow(t *testing.T) {
	resolver := func(id string) (ImageResolveResult, error) {
		return ImageResolveResult{}, errors.New("fetch failed")
	}
	clock := &fakeClock{ms: 1000}
	c := NewImageCache(10, resolver, nil, clock, nil)
	c.Get("bad")
	ok := waitUntil(c, func() bool { return c.Get("bad").State != ImagePending })
	require.True(t, ok)

	entry := c.Get("bad")
	assert.Equal(t, ImageError, entry.State)
	assert.Equal(t, clock.ms+defaultImageRetryWindowMs, entry.ExpiresAtMs)

	// Before the retry window elapses, Get returns the stale error as-is.
	again := c.Get("bad")
	assert.Equal(t, ImageError, again.State)

	// After the window elapses, Get reschedules.
	clock.ms += defaultImageRetryWindowMs + 1
	c.Get("bad")
	assert.True(t, c.inFlight["bad"])
}

func TestImageCacheEvictsOldestReadyOverCapacity(t *testing.T) {
	resolver := func(id string) (ImageResolveResult, error) {
		return ImageResolveResult{Decoded: &fakeImage{w: 1, h: 1}}, nil
	}
	c := NewImageCache(1, resolver, nil, &fakeClock{}, nil)

	c.Get("a")
	require.True(t, waitUntil(c, func() bool { return c.Get("a").State == ImageReady }))

	c.Get("b")
	require.True(t, waitUntil(c, func() bool { return c.Get("b").State == ImageReady }))

	// "a" should have been evicted to make room for "b".
	assert.Equal(t, 1, c.readyLRU.Len())
}

func TestImageCacheInvalidateClosesBitmap(t *testing.T) {
	img := &fakeImage{w: 5, h: 5}
	resolver := func(id string) (ImageResolveResult, error) {
		return ImageResolveResult{Decoded: img}, nil
	}
	c := NewImageCache(10, resolver, nil, &fakeClock{}, nil)
	c.Get("x")
	require.True(t, waitUntil(c, func() bool { return c.Get("x").State == ImageReady }))

	c.Invalidate("x")
	assert.True(t, img.closed)
	assert.Equal(t, ImagePending, c.Get("x").State)
}

func TestImageCacheDestroyDiscardsLateCompletions(t *testing.T) {
	release := make(chan struct{})
	img := &fakeImage{w: 2, h: 2}
	resolver := func(id string) (ImageResolveResult, error) {
		<-release
		return ImageResolveResult{Decoded: img}, nil
	}
	c := NewImageCache(10, resolver, nil, &fakeClock{}, nil)
	c.Get("slow")
	c.Destroy()
	close(release)

	ok := waitUntil(c, func() bool { return len(c.inFlight) == 0 })
	require.True(t, ok)
	assert.True(t, img.closed, "bitmap decoded after Destroy must still be closed")
}

func TestImageCacheDecodesRawBytesWithHeaderGuard(t *testing.T) {
	oversized := buildPNG(MaxImageDimension+1, 10)
	resolver := func(id string) (ImageResolveResult, error) {
		return ImageResolveResult{Bytes: oversized}, nil
	}
	decodeCalled := false
	decode := func(b []byte) (DecodedImage, error) {
		decodeCalled = true
		return &fakeImage{w: 1, h: 1}, nil
	}
	c := NewImageCache(10, resolver, decode, &fakeClock{}, nil)
	c.Get("huge")
	ok := waitUntil(c, func() bool { return c.Get("huge").State != ImagePending })
	require.True(t, ok)
	assert.Equal(t, ImageError, c.Get("huge").State)
	assert.False(t, decodeCalled, "oversized image must be rejected before the decoder runs")
}
