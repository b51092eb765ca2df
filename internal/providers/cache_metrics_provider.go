package providers

import "photoaudit/internal/structures"

const previewKeyPrefix = "preview:"

// PreviewCacheProvider keeps rendered previews keyed by photo location and
// counts hits and misses.
type PreviewCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func previewKey(location string) string {
	return previewKeyPrefix + location
}

func (c *PreviewCacheProvider) Get(location string) ([]byte, bool) {
	val, ok := c.inner.Get(previewKey(location))
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

// Set ignores empty renders so a failed preview is retried next time.
func (c *PreviewCacheProvider) Set(location string, value []byte) {
	if len(value) == 0 {
		return
	}
	c.inner.Set(previewKey(location), value)
}

// NewPreviewCacheProvider returns the plain noop cache when caching is
// disabled, so no misses are counted for a cache that does not exist.
func NewPreviewCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &PreviewCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
