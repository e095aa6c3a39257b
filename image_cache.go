package sheetgrid

// ImageState is the decode lifecycle state of one cached image.
type ImageState int

const (
	ImagePending ImageState = iota
	ImageReady
	ImageMissing
	ImageError
)

// ImageEntry is one ImageCache slot.
type ImageEntry struct {
	State       ImageState
	Bitmap      DecodedImage
	Err         error
	ExpiresAtMs float64 // retry-eligible timestamp, meaningful in ImageError
}

// ImageResolveResult is what an ImageResolver produces for one imageId.
// Exactly one of Bytes/Decoded is meaningful when Missing is false.
type ImageResolveResult struct {
	Bytes   []byte
	Decoded DecodedImage
	Missing bool
}

// ImageResolver performs the actual (possibly slow, I/O-bound) fetch for
// an imageId. It is invoked on its own goroutine by ImageCache; the cache
// itself is the sole reader of the completion it produces.
type ImageResolver func(imageId string) (ImageResolveResult, error)

// ImageDecoder turns raw bytes into a DecodedImage once they have passed
// the pre-decode header guard. A secondary fallback decoder may be
// supplied for formats whose primary decode path can reject certain
// recoverable subformats (spec.md section 5).
type ImageDecoder func(data []byte) (DecodedImage, error)

const defaultImageRetryWindowMs = 250

type imageCompletion struct {
	id     string
	result ImageResolveResult
	err    error
}

// ImageCache implements spec.md section 4.6/6.3: one decode per unique
// imageId, pre-decode header guards, time-gated error retries, and LRU
// eviction of ready bitmaps once the ready count exceeds max.
type ImageCache struct {
	entries       map[string]*ImageEntry
	readyLRU      *lruCache[string, struct{}]
	maxReady      int
	inFlight      map[string]bool
	resolver      ImageResolver
	decode        ImageDecoder
	fallbackDecode ImageDecoder
	decoder       TextDecoderFactory
	clock         Clock
	retryWindowMs float64
	destroyed     bool

	completions chan imageCompletion
	onReady     func(id string) // marks content dirty; injected by GridRenderer
}

// NewImageCache builds a cache with the given ready-entry LRU capacity. A
// nil decoder falls back to the default UTF-8 TextDecoderFactory.
func NewImageCache(maxReady int, resolver ImageResolver, decode ImageDecoder, clock Clock, decoder TextDecoderFactory) *ImageCache {
	if clock == nil {
		clock = SystemClock()
	}
	if decoder == nil {
		decoder = DefaultTextDecoderFactory()
	}
	return &ImageCache{
		entries:       make(map[string]*ImageEntry),
		readyLRU:      newLRUCache[string, struct{}](0), // unbounded: evictIfOverCapacity trims it and closes bitmaps
		maxReady:      maxReady,
		inFlight:      make(map[string]bool),
		resolver:      resolver,
		decode:        decode,
		decoder:       decoder,
		clock:         clock,
		retryWindowMs: defaultImageRetryWindowMs,
		completions:   make(chan imageCompletion, 64),
	}
}

// SetFallbackDecoder installs a secondary decode path used when the
// primary decoder rejects a recoverable subformat.
func (c *ImageCache) SetFallbackDecoder(fn ImageDecoder) { c.fallbackDecode = fn }

// SetOnReady installs the callback invoked (synchronously, from
// ProcessCompletions) whenever an image transitions to Ready/Missing/
// Error, so the host can mark the content layer dirty.
func (c *ImageCache) SetOnReady(fn func(id string)) { c.onReady = fn }

// Get returns the current cache entry for id, scheduling a decode if this
// is the first request (or if a prior error's retry window has passed).
func (c *ImageCache) Get(id string) ImageEntry {
	if c.destroyed {
		return ImageEntry{State: ImageMissing}
	}
	entry, ok := c.entries[id]
	if ok {
		if entry.State == ImageError && c.clock.NowMs() >= entry.ExpiresAtMs {
			c.schedule(id)
			return *entry
		}
		if entry.State == ImageReady {
			c.readyLRU.Set(id, struct{}{})
		}
		return *entry
	}
	c.entries[id] = &ImageEntry{State: ImagePending}
	c.schedule(id)
	return *c.entries[id]
}

func (c *ImageCache) schedule(id string) {
	if c.inFlight[id] || c.resolver == nil {
		return
	}
	c.inFlight[id] = true
	go func() {
		result, err := c.resolver(id)
		c.completions <- imageCompletion{id: id, result: result, err: err}
	}()
}

// ProcessCompletions drains and applies any finished decode tasks. The
// host calls this once per frame (or whenever convenient); it is the sole
// reader of the completion channel, per spec.md section 5.
func (c *ImageCache) ProcessCompletions() {
	for {
		select {
		case comp := <-c.completions:
			c.applyCompletion(comp)
		default:
			return
		}
	}
}

func (c *ImageCache) applyCompletion(comp imageCompletion) {
	delete(c.inFlight, comp.id)
	if c.destroyed {
		if comp.result.Decoded != nil {
			comp.result.Decoded.Close()
		}
		return
	}

	if comp.err != nil {
		c.setError(comp.id, comp.err)
		return
	}
	if comp.result.Missing {
		c.entries[comp.id] = &ImageEntry{State: ImageMissing}
		c.notifyReady(comp.id)
		return
	}

	bitmap := comp.result.Decoded
	if bitmap == nil {
		dims, ok := SniffImageDimensions(comp.result.Bytes, c.decoder)
		if ok && dims.ExceedsGuard() {
			c.setError(comp.id, newGridError(ErrImageTooLarge, "image %s exceeds %dx%d/%d px guard", comp.id, MaxImageDimension, MaxImageDimension, MaxImagePixels))
			return
		}
		decoded, err := c.decode(comp.result.Bytes)
		if err != nil && c.fallbackDecode != nil {
			decoded, err = c.fallbackDecode(comp.result.Bytes)
		}
		if err != nil {
			c.setError(comp.id, newGridError(ErrImageDecodeFailed, "%s: %v", comp.id, err))
			return
		}
		bitmap = decoded
	}

	c.entries[comp.id] = &ImageEntry{State: ImageReady, Bitmap: bitmap}
	c.readyLRU.Set(comp.id, struct{}{})
	c.evictIfOverCapacity()
	c.notifyReady(comp.id)
}

func (c *ImageCache) setError(id string, err error) {
	c.entries[id] = &ImageEntry{
		State:       ImageError,
		Err:         err,
		ExpiresAtMs: c.clock.NowMs() + c.retryWindowMs,
	}
	c.notifyReady(id)
}

func (c *ImageCache) notifyReady(id string) {
	if c.onReady != nil {
		c.onReady(id)
	}
}

func (c *ImageCache) evictIfOverCapacity() {
	readyCount := c.readyLRU.Len()
	for readyCount > c.maxReady {
		victim, ok := c.lruVictim()
		if !ok {
			return
		}
		c.readyLRU.Delete(victim)
		if entry, ok := c.entries[victim]; ok && entry.Bitmap != nil {
			entry.Bitmap.Close()
		}
		delete(c.entries, victim)
		readyCount--
	}
}

// lruVictim peeks the oldest ready entry without touching it.
func (c *ImageCache) lruVictim() (string, bool) {
	if c.readyLRU.Len() == 0 {
		return "", false
	}
	oldest := c.readyLRU.ll.Back()
	if oldest == nil {
		return "", false
	}
	return oldest.Value.(*lruEntry[string, struct{}]).key, true
}

// Invalidate drops a single cached entry so the next Get reschedules a
// fresh decode.
func (c *ImageCache) Invalidate(id string) {
	if entry, ok := c.entries[id]; ok && entry.Bitmap != nil {
		entry.Bitmap.Close()
	}
	delete(c.entries, id)
	c.readyLRU.Delete(id)
}

// Clear drops every cached entry, closing any decoded bitmaps.
func (c *ImageCache) Clear() {
	for id, entry := range c.entries {
		if entry.Bitmap != nil {
			entry.Bitmap.Close()
		}
		delete(c.entries, id)
	}
	c.readyLRU.Clear()
}

// Destroy marks the cache as torn down: in-flight completions are
// discarded (their bitmaps closed) instead of being applied.
func (c *ImageCache) Destroy() {
	c.Clear()
	c.destroyed = true
}
