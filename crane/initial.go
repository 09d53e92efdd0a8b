package crane

import (
	"context"

	"github.com/kbukum/liftkit/storage"
	"github.com/kbukum/liftkit/validation"
)

// DefaultInitialKey is the storage key of the initial data file.
const DefaultInitialKey = "initial"

// InitialData is everything the chain needs before it starts: the user's
// characteristics of the mechanism and the hook and bearing catalogues.
type InitialData struct {
	DriverType        DriverType        `json:"driver_type" validate:"required"`
	LoadCombination   LoadCombination   `json:"load_combination" validate:"required"`
	Vhmax             float64           `json:"vhmax" validate:"gt=0"`
	Vhcs              float64           `json:"vhcs" validate:"gte=0"`
	LiftClass         LiftClass         `json:"lift_class" validate:"required"`
	LoadCapacity      float64           `json:"load_capacity" validate:"gt=0"`
	MechanismWorkType MechanismWorkType `json:"mechanism_work_type" validate:"required"`
	Hooks             []Hook            `json:"hooks" validate:"min=1,dive"`
	Bearings          []Bearing         `json:"bearings" validate:"min=1,dive"`
	AltLiftDevice     *AltLiftDevice    `json:"alt_lift_device,omitempty"`
}

// Validate checks field ranges and nested catalogue entries.
func (d InitialData) Validate() error {
	return validation.Validate(d)
}

// Source produces initial data for one evaluation.
type Source func(ctx context.Context) (InitialData, error)

// FromData returns a Source yielding a fixed value.
func FromData(d InitialData) Source {
	return func(context.Context) (InitialData, error) { return d, nil }
}

// FromStore returns a Source reading key from store on every call. The
// store caches file contents, so call store.Invalidate to pick up edits.
func FromStore(store *storage.Store, key string) Source {
	if key == "" {
		key = DefaultInitialKey
	}
	return func(ctx context.Context) (InitialData, error) {
		return storage.LoadAs[InitialData](ctx, store, key)
	}
}

// SampleData is a complete, valid data set used by `liftkit init` and tests.
func SampleData() InitialData {
	return InitialData{
		DriverType:        Hd2,
		LoadCombination:   B1,
		Vhmax:             0.5,
		Vhcs:              0.2,
		LiftClass:         Hc2,
		LoadCapacity:      20,
		MechanismWorkType: M4,
		Hooks: []Hook{
			{Gost: "GOST 6627-74 No.17", Type: "Forged", LoadCapacityM13: 16, LoadCapacityM46: 12.5, LoadCapacityM78: 10, ShankDiameter: 60, Weight: 38},
			{Gost: "GOST 34567-85", Type: "Forged", LoadCapacityM13: 25, LoadCapacityM46: 23, LoadCapacityM78: 21, ShankDiameter: 85, Weight: 50},
			{Gost: "GOST 6627-74 No.20", Type: "Forged", LoadCapacityM13: 32, LoadCapacityM46: 25, LoadCapacityM78: 20, ShankDiameter: 95, Weight: 71},
		},
		Bearings: []Bearing{
			{Name: "8100H", OuterDiameter: 24, InnerDiameter: 10, StaticLoadCapacity: 11800, Height: 9},
			{Name: "8218", OuterDiameter: 135, InnerDiameter: 90, StaticLoadCapacity: 465000, Height: 35},
			{Name: "8220", OuterDiameter: 150, InnerDiameter: 100, StaticLoadCapacity: 550000, Height: 38},
		},
	}
}
