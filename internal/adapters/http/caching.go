package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses that did not set
// one, and answers conditional GETs with 304 using a weak ETag of the body.
// Metadata lookups are POSTs and are never cached.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		if c.Method() != fiber.MethodGet {
			return nil
		}

		if c.GetRespHeader(fiber.HeaderCacheControl) == "" {
			if ttl := cacheControlFor(c.Path()); ttl != "" {
				c.Set(fiber.HeaderCacheControl, ttl)
			}
		}

		if c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		h := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(h[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)

		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/api/health" || path == "/api/ready" || path == "/metrics":
		return "no-store"
	case path == "/api/engine-status" || path == "/api/wolfram-status":
		// fixed for the process lifetime, but a restart may change it
		return "no-cache"
	case path == "/api/categories":
		return "public, max-age=86400"
	case path == "/" || strings.HasPrefix(path, "/docs"):
		return "public, max-age=300"
	}
	return ""
}
