package http

import (
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecatedRoute marks an endpoint as deprecated with sunset date.
type DeprecatedRoute struct {
	Path        string    // exact request path
	SunsetDate  time.Time // date when the endpoint will be removed
	Alternative string    // successor endpoint (optional)
}

// legacyRoutes are the endpoint names used by the first front-end release.
var legacyRoutes = []DeprecatedRoute{
	{
		Path:        "/api/wolfram-metadata",
		SunsetDate:  time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC),
		Alternative: "/api/metadata",
	},
	{
		Path:        "/api/wolfram-status",
		SunsetDate:  time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC),
		Alternative: "/api/engine-status",
	},
}

// DeprecationMiddleware adds Deprecation, Sunset, Link and Warning headers
// to requests for deprecated paths.
func DeprecationMiddleware(deprecated []DeprecatedRoute) fiber.Handler {
	byPath := make(map[string]DeprecatedRoute, len(deprecated))
	for _, d := range deprecated {
		byPath[d.Path] = d
	}

	return func(c *fiber.Ctx) error {
		d, ok := byPath[c.Path()]
		if !ok {
			return c.Next()
		}

		// RFC 8594
		c.Set("Deprecation", "true")
		c.Set("Sunset", d.SunsetDate.UTC().Format(time.RFC1123))

		// RFC 8288
		if d.Alternative != "" {
			c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, d.Alternative))
		}

		days := math.Max(0, time.Until(d.SunsetDate).Hours()/24)
		c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))

		return c.Next()
	}
}
