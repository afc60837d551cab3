package entities

import (
	"fmt"
	"strings"
)

type UnitSystem string

const (
	UnitsKelvin   UnitSystem = "kelvin"
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

// ParseUnitSystem accepts the values offered by the form as well as the
// upstream's own "standard" alias. An empty value selects Kelvin.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "kelvin", "standard":
		return UnitsKelvin, nil
	case "metric":
		return UnitsMetric, nil
	case "imperial":
		return UnitsImperial, nil
	default:
		return "", ValidationError{Field: "units", Reason: fmt.Sprintf("unsupported unit system %q", s)}
	}
}

// UpstreamValue returns the value of the upstream "units" parameter. Kelvin is
// the upstream default and is expressed by leaving the parameter out.
func (u UnitSystem) UpstreamValue() string {
	switch u {
	case UnitsMetric:
		return "metric"
	case UnitsImperial:
		return "imperial"
	default:
		return ""
	}
}

func (u UnitSystem) Symbol() string {
	switch u {
	case UnitsMetric:
		return "C"
	case UnitsImperial:
		return "F"
	default:
		return "K"
	}
}

func (u UnitSystem) Label() string {
	switch u {
	case UnitsMetric:
		return "Celsius (°C)"
	case UnitsImperial:
		return "Fahrenheit (°F)"
	default:
		return "Kelvin"
	}
}

func (u UnitSystem) String() string {
	if u == "" {
		return string(UnitsKelvin)
	}
	return string(u)
}

// AllUnitSystems lists the unit systems in the order the form offers them.
func AllUnitSystems() []UnitSystem {
	return []UnitSystem{UnitsKelvin, UnitsMetric, UnitsImperial}
}
