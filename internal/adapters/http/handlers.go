package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/formhunt/internal/core/domain"
)

// coordinate accepts a JSON number or a numeric string.
type coordinate float64

func (c *coordinate) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*c = coordinate(f)
	return nil
}

// metadataRequest is the POST /api/metadata body. Pointers tell a missing
// (or null) field apart from zero.
type metadataRequest struct {
	Lat *coordinate `json:"lat"`
	Lon *coordinate `json:"lon"`
}

// parsePoint validates presence and range of lat/lon in body.
func parsePoint(body []byte) (domain.GeoPoint, error) {
	var req metadataRequest
	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if (errors.As(err, &typeErr) && typeErr.Field != "") || strings.Contains(err.Error(), "not a number") {
			return domain.GeoPoint{}, errors.New("lat and lon must be numbers")
		}
		return domain.GeoPoint{}, errors.New("request body must be a JSON object")
	}
	if req.Lat == nil || req.Lon == nil {
		return domain.GeoPoint{}, errors.New("lat and lon are required")
	}

	p := domain.GeoPoint{Lat: float64(*req.Lat), Lon: float64(*req.Lon)}
	if err := p.Validate(); err != nil {
		return domain.GeoPoint{}, err
	}
	return p, nil
}

// MetadataHandler returns nearby features for the posted coordinate.
// Engine failures never surface here: the body is {} in that case.
func MetadataHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePoint(c.Body())
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		md := deps.Metadata.Lookup(c.UserContext(), p)

		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(md)
	}
}

// EngineStatusHandler reports whether the engine was found at startup.
func EngineStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"available": deps.Metadata.Status().Available})
	}
}

// CategoriesHandler lists the feature categories and their limits.
func CategoriesHandler() fiber.Handler {
	type category struct {
		Name  string `json:"name"`
		Limit int    `json:"limit"`
	}
	list := make([]category, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		list = append(list, category{Name: c.Name, Limit: c.Limit})
	}
	return func(c *fiber.Ctx) error {
		return c.JSON(list)
	}
}
