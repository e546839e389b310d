// Code generated manually in the style of mockery. Edit with care.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"googlemaps.github.io/maps"
)

// GoogleAPIClient is a mock type for the geocoding.GoogleAPIClient interface.
type GoogleAPIClient struct {
	mock.Mock
}

func (m *GoogleAPIClient) Geocode(
	ctx context.Context,
	r *maps.GeocodingRequest,
) ([]maps.GeocodingResult, error) {
	args := m.Called(ctx, r)

	var results []maps.GeocodingResult
	if args.Get(0) != nil {
		results, _ = args.Get(0).([]maps.GeocodingResult)
	}

	return results, args.Error(1)
}

// NewGoogleAPIClient creates a new instance of GoogleAPIClient. It registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewGoogleAPIClient(t interface {
	mock.TestingT
	Cleanup(func())
},
) *GoogleAPIClient {
	m := &GoogleAPIClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
