package forecast

import (
	"fmt"
	"strings"
)

// Thresholds relative to the baseline average.
const (
	HighFactor = 1.25
	LowFactor  = 0.75
)

// Classification labels a forecast relative to the baseline.
type Classification int

const (
	Normal Classification = iota
	High
	Low
)

// Classify returns High when value > 1.25×baseline, Low when value <
// 0.75×baseline and Normal otherwise. Both bounds are exclusive.
func Classify(value, baseline float64) Classification {
	switch {
	case value > HighFactor*baseline:
		return High
	case value < LowFactor*baseline:
		return Low
	default:
		return Normal
	}
}

func (c Classification) String() string {
	switch c {
	case High:
		return "HIGH"
	case Low:
		return "LOW"
	default:
		return "NORMAL"
	}
}

// Advice returns the efficiency hint shown with a forecast.
func (c Classification) Advice() string {
	switch c {
	case High:
		return "High predicted usage! Consider reducing appliance use or adjusting temperature settings."
	case Low:
		return "Efficient usage predicted!"
	default:
		return "Usage is within normal expected range."
	}
}

// Severity is "warning" for High and "info" otherwise.
func (c Classification) Severity() string {
	if c == High {
		return "warning"
	}
	return "info"
}

func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Classification) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "HIGH":
		*c = High
	case "LOW":
		*c = Low
	case "NORMAL":
		*c = Normal
	default:
		return fmt.Errorf("unknown classification %q", b)
	}
	return nil
}
