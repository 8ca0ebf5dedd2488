package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl sets the Cache-Control header for responses, usually static assets.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	return cacheHeader(fmt.Sprintf("public, max-age=%d", maxAgeSeconds))
}

// NoStore marks responses as uncacheable. Catalog pages carry one-shot
// flash messages and change on every submission.
func NoStore() gin.HandlerFunc {
	return cacheHeader("no-store")
}

func cacheHeader(value string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}
