package models

import "strings"

// Entity represents a record to be placed on the map. Entities are supplied by
// an external source and are immutable from the pipeline's perspective: the
// pipeline never creates or deletes them, it only resolves their coordinates.
type Entity struct {
	ID     string `json:"id"`     // ID is the stable unique identifier of the record.
	Name   string `json:"name"`   // Name is a human-readable label, not used by the pipeline.
	City   string `json:"city"`   // City is the free-text city the record belongs to.
	Region string `json:"region"` // Region is the free-text state/region, may be empty.
}

// HasLocation reports whether the entity carries enough address data to be
// geocoded. Entities without a city are never queued for resolution.
func (e Entity) HasLocation() bool {
	return strings.TrimSpace(e.City) != ""
}

// Address returns the free-text address handed to the geocoding provider.
func (e Entity) Address() string {
	city := strings.TrimSpace(e.City)
	region := strings.TrimSpace(e.Region)
	if region == "" {
		return city
	}
	return city + ", " + region
}
