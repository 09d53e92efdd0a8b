package crane

import (
	"fmt"
	"strings"
)

// Hook is a catalogue crane hook.
type Hook struct {
	Gost            string  `json:"gost" validate:"required"`
	Type            string  `json:"type"`
	LoadCapacityM13 float64 `json:"load_capacity_m13" validate:"gte=0"`
	LoadCapacityM46 float64 `json:"load_capacity_m46" validate:"gte=0"`
	LoadCapacityM78 float64 `json:"load_capacity_m78" validate:"gte=0"`
	ShankDiameter   float64 `json:"shank_diameter" validate:"gt=0"`
	Weight          float64 `json:"weight" validate:"gte=0"`
}

// Capacity returns the load capacity rated for the work-type group of w.
func (h Hook) Capacity(w MechanismWorkType) float64 {
	switch w.Group() {
	case GroupM13:
		return h.LoadCapacityM13
	case GroupM46:
		return h.LoadCapacityM46
	default:
		return h.LoadCapacityM78
	}
}

// Bearing is a catalogue thrust bearing.
type Bearing struct {
	Name               string  `json:"name" validate:"required"`
	OuterDiameter      float64 `json:"outer_diameter" validate:"gt=0"`
	InnerDiameter      float64 `json:"inner_diameter" validate:"gt=0"`
	StaticLoadCapacity float64 `json:"static_load_capacity" validate:"gt=0"`
	Height             float64 `json:"height" validate:"gt=0"`
}

// AltLiftDevice is a user-supplied load handling device hung below the hook.
type AltLiftDevice struct {
	Name   string  `json:"name" validate:"required"`
	Weight float64 `json:"weight" validate:"gte=0"`
}

// BetPhi holds the β2 and ϕ2min coefficients of a lift class.
type BetPhi struct {
	Bet float64 `json:"bet"`
	Phi float64 `json:"phi"`
}

// enum parses and prints the closed string enums below. Values start at 1;
// the zero value means "unset" and fails `validate:"required"`.
type enum[T ~uint8] struct {
	kind  string
	names []string
}

func (e enum[T]) String(v T) string {
	if v > 0 && int(v) <= len(e.names) {
		return e.names[v-1]
	}
	return fmt.Sprintf("%s(%d)", e.kind, uint8(v))
}

// Parse ignores case and surrounding blanks.
func (e enum[T]) Parse(s string) (T, error) {
	for i, name := range e.names {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return T(i + 1), nil
		}
	}
	return 0, fmt.Errorf("invalid %s: %q", e.kind, s)
}

func (e enum[T]) marshal(v T) ([]byte, error) {
	switch {
	case v == 0:
		return []byte{}, nil
	case int(v) > len(e.names):
		return nil, fmt.Errorf("invalid %s: %d", e.kind, uint8(v))
	}
	return []byte(e.names[v-1]), nil
}

// DriverType is the lifting mechanism drive type.
type DriverType uint8

const (
	Hd1 DriverType = iota + 1
	Hd2
	Hd3
	Hd4
	Hd5
)

var driverTypes = enum[DriverType]{kind: "DriverType", names: []string{"Hd1", "Hd2", "Hd3", "Hd4", "Hd5"}}

// ParseDriverType parses "Hd1".."Hd5", ignoring case.
func ParseDriverType(s string) (DriverType, error) { return driverTypes.Parse(s) }

func (d DriverType) String() string                { return driverTypes.String(d) }
func (d DriverType) MarshalText() ([]byte, error)  { return driverTypes.marshal(d) }
func (d *DriverType) UnmarshalText(b []byte) error { return unmarshalEnum(driverTypes, d, b) }

// LoadCombination is the load combination of the design case.
type LoadCombination uint8

const (
	A1 LoadCombination = iota + 1
	B1
	C1
)

var loadCombinations = enum[LoadCombination]{kind: "LoadCombination", names: []string{"A1", "B1", "C1"}}

// ParseLoadCombination parses "A1", "B1" or "C1", ignoring case.
func ParseLoadCombination(s string) (LoadCombination, error) { return loadCombinations.Parse(s) }

func (l LoadCombination) String() string                { return loadCombinations.String(l) }
func (l LoadCombination) MarshalText() ([]byte, error)  { return loadCombinations.marshal(l) }
func (l *LoadCombination) UnmarshalText(b []byte) error { return unmarshalEnum(loadCombinations, l, b) }

// LiftClass is the hoisting class of the crane.
type LiftClass uint8

const (
	Hc1 LiftClass = iota + 1
	Hc2
	Hc3
	Hc4
)

var liftClasses = enum[LiftClass]{kind: "LiftClass", names: []string{"Hc1", "Hc2", "Hc3", "Hc4"}}

// ParseLiftClass parses "Hc1".."Hc4", ignoring case.
func ParseLiftClass(s string) (LiftClass, error) { return liftClasses.Parse(s) }

func (c LiftClass) String() string                { return liftClasses.String(c) }
func (c LiftClass) MarshalText() ([]byte, error)  { return liftClasses.marshal(c) }
func (c *LiftClass) UnmarshalText(b []byte) error { return unmarshalEnum(liftClasses, c, b) }

// MechanismWorkType is the duty group of the hoisting mechanism.
type MechanismWorkType uint8

const (
	M1 MechanismWorkType = iota + 1
	M2
	M3
	M4
	M5
	M6
	M7
	M8
)

var mechanismWorkTypes = enum[MechanismWorkType]{
	kind:  "MechanismWorkType",
	names: []string{"M1", "M2", "M3", "M4", "M5", "M6", "M7", "M8"},
}

// ParseMechanismWorkType parses "M1".."M8", ignoring case.
func ParseMechanismWorkType(s string) (MechanismWorkType, error) { return mechanismWorkTypes.Parse(s) }

func (w MechanismWorkType) String() string               { return mechanismWorkTypes.String(w) }
func (w MechanismWorkType) MarshalText() ([]byte, error) { return mechanismWorkTypes.marshal(w) }
func (w *MechanismWorkType) UnmarshalText(b []byte) error {
	return unmarshalEnum(mechanismWorkTypes, w, b)
}

// WorkGroup selects which hook capacity column applies.
type WorkGroup uint8

const (
	GroupM13 WorkGroup = iota
	GroupM46
	GroupM78
)

// Group maps M1-M3, M4-M6 and M7-M8 to their capacity columns.
func (w MechanismWorkType) Group() WorkGroup {
	switch {
	case w < M4:
		return GroupM13
	case w < M7:
		return GroupM46
	default:
		return GroupM78
	}
}

func unmarshalEnum[T ~uint8](e enum[T], dst *T, b []byte) error {
	if len(b) == 0 {
		*dst = 0
		return nil
	}
	v, err := e.Parse(string(b))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
