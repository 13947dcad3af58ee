package ports

import (
	"context"

	"github.com/samirrijal/formhunt/internal/core/domain"
)

// MetadataEngine looks up features near a point using the external engine.
// Implementations return one of the domain.ErrEngine* errors (wrapped) on
// failure; callers decide how to degrade.
type MetadataEngine interface {
	NearbyFeatures(ctx context.Context, p domain.GeoPoint) (domain.Metadata, error)
}
