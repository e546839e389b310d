package geocoding

import (
	"context"

	"github.com/UnknownOlympus/pinmap/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and a free-text address (typically
// "city, region") and returns the corresponding coordinates. A lookup that
// finds no match returns an error; callers treat that as an ordinary
// "no result" outcome, not a fault.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}
