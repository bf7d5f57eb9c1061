package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const responseMetaKey = "response_meta"

type responseMeta struct {
	start    time.Time
	cacheHit *bool
}

// WithResponseMeta tracks per-request timing and cache-hit information that
// handlers can surface in the response envelope.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, &responseMeta{start: time.Now()})
		c.Next()
	}
}

// SetCacheHit records whether the current response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	if meta := metaFor(c); meta != nil {
		meta.cacheHit = &hit
	}
}

// ExtractMeta returns the metadata collected for the current request.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	meta := metaFor(c)
	if meta == nil {
		return nil
	}
	out := map[string]interface{}{
		"processing_time_ms": time.Since(meta.start).Milliseconds(),
	}
	if meta.cacheHit != nil {
		out["cache_hit"] = *meta.cacheHit
	}
	return out
}

func metaFor(c *gin.Context) *responseMeta {
	if c == nil {
		return nil
	}
	if v, exists := c.Get(responseMetaKey); exists {
		if typed, ok := v.(*responseMeta); ok {
			return typed
		}
	}
	return nil
}
