// Code generated manually in the style of mockery. Edit with care.
package mocks

import (
	"context"

	"github.com/UnknownOlympus/pinmap/internal/models"
	"github.com/stretchr/testify/mock"
)

// Provider is a mock type for the geocoding.Provider interface.
type Provider struct {
	mock.Mock
}

func (m *Provider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	args := m.Called(ctx, address)

	var coords *models.Coordinates
	if args.Get(0) != nil {
		coords, _ = args.Get(0).(*models.Coordinates)
	}

	return coords, args.Error(1)
}

// NewProvider creates a new instance of Provider. It registers a testing
// interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewProvider(t interface {
	mock.TestingT
	Cleanup(func())
},
) *Provider {
	m := &Provider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
