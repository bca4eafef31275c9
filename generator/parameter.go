package generator

import "time"

// Parameter names a monitored sensor channel on a component
type Parameter string

// Monitored parameters with explicit unit, threshold and sampling entries
const (
	OilPress          Parameter = "oil_press"
	HydPress          Parameter = "hyd_press"
	BrakePress        Parameter = "brake_press"
	ManifoldPress     Parameter = "manifold_press"
	CHT               Parameter = "cht"
	OilTemp           Parameter = "oil_temp"
	RPM               Parameter = "rpm"
	BusVoltage        Parameter = "bus_voltage"
	AlternatorCurrent Parameter = "alternator_current"
)

// Fallbacks for parameters missing from the lookup tables
const (
	DefaultUnit             = "psi"
	DefaultThreshold        = 20.0
	DefaultSamplingInterval = 60 * time.Second
)

// Monitored reports whether p has its own table entries
func (p Parameter) Monitored() bool {
	switch p {
	case OilPress, HydPress, BrakePress, ManifoldPress, CHT, OilTemp, RPM, BusVoltage, AlternatorCurrent:
		return true
	default:
		return false
	}
}

// Unit returns the unit label recorded with every reading of p
func (p Parameter) Unit() string {
	switch p {
	case OilPress, HydPress, BrakePress, ManifoldPress:
		return "psi"
	case CHT, OilTemp:
		return "°C"
	case RPM:
		return "rpm"
	case BusVoltage:
		return "volts"
	case AlternatorCurrent:
		return "amps"
	default:
		return DefaultUnit
	}
}

// Threshold returns the health cutoff for p. Readings strictly below it are unhealthy.
//
// The rpm entry is on the raw engine scale while generated values are scaled to 0-100,
// so every generated rpm sample classifies as unhealthy. Use threshold overrides to recalibrate.
func (p Parameter) Threshold() float64 {
	switch p {
	case OilPress:
		return 25
	case HydPress:
		return 30
	case BrakePress:
		return 20
	case ManifoldPress:
		return 15
	case CHT:
		return 35
	case OilTemp:
		return 30
	case RPM:
		return 1000
	case BusVoltage:
		return 24
	case AlternatorCurrent:
		return 10
	default:
		return DefaultThreshold
	}
}

// SamplingInterval returns the spacing between consecutive samples of p
func (p Parameter) SamplingInterval() time.Duration {
	switch p {
	case RPM:
		return 10 * time.Second
	case BusVoltage, AlternatorCurrent:
		return 15 * time.Second
	case OilPress, HydPress, BrakePress, ManifoldPress:
		return 30 * time.Second
	case CHT, OilTemp:
		return 60 * time.Second
	default:
		return DefaultSamplingInterval
	}
}

// ParseParameters converts configured names into parameters
func ParseParameters(names []string) []Parameter {
	params := make([]Parameter, 0, len(names))
	for _, name := range names {
		params = append(params, Parameter(name))
	}
	return params
}
