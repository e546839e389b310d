// Code generated manually in the style of mockery. Edit with care.
package mocks

import (
	"context"

	"github.com/UnknownOlympus/pinmap/internal/models"
	"github.com/stretchr/testify/mock"
)

// Interface is a mock type for the repository.Interface interface.
type Interface struct {
	mock.Mock
}

func (m *Interface) FetchEntities(ctx context.Context, limit int) ([]models.Entity, error) {
	args := m.Called(ctx, limit)

	var entities []models.Entity
	if args.Get(0) != nil {
		entities, _ = args.Get(0).([]models.Entity)
	}

	return entities, args.Error(1)
}

// NewInterface creates a new instance of Interface. It registers a testing
// interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewInterface(t interface {
	mock.TestingT
	Cleanup(func())
},
) *Interface {
	m := &Interface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
