package history

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column names expected in tabular datasets.
const (
	ColumnTimestamp = "timestamp"
	ColumnEnergy    = "energy_consumption"
)

// Policy selects how malformed rows are handled while reading a dataset.
type Policy string

const (
	// PolicyReject fails the whole load on the first malformed row.
	PolicyReject Policy = "reject"
	// PolicySkip drops malformed rows and keeps loading.
	PolicySkip Policy = "skip"
)

// ParsePolicy validates s. An empty string selects PolicyReject.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown malformed row policy %q", s)
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02.01.2006 15:04",
}

// ParseTimestamp parses s using the supported layouts. Values without zone
// information are interpreted in loc; integer values are unix seconds.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).In(loc), nil
	}
	return time.Time{}, errors.New("unrecognised timestamp format")
}

// ParseEnergy parses a consumption value in kWh. It must be finite and non-negative.
func ParseEnergy(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	if v < 0 {
		return 0, errors.New("negative consumption")
	}
	return v, nil
}

// RowBuilder accumulates raw rows into Records according to a Policy.
type RowBuilder struct {
	Policy   Policy
	Location *time.Location

	records []Record
	skipped int
}

// Add parses one raw row. With PolicyReject a malformed row returns a
// *MalformedRowError; with PolicySkip it is counted and dropped.
func (b *RowBuilder) Add(line int, timestamp, energy string) error {
	rec, err := parseRow(line, timestamp, energy, b.Location)
	if err != nil {
		if b.Policy == PolicySkip {
			b.skipped++
			return nil
		}
		return err
	}
	b.records = append(b.records, rec)
	return nil
}

// Records returns the rows accepted so far.
func (b *RowBuilder) Records() []Record { return b.records }

// Skipped returns the number of dropped rows.
func (b *RowBuilder) Skipped() int { return b.skipped }

func parseRow(line int, timestamp, energy string, loc *time.Location) (Record, error) {
	ts, err := ParseTimestamp(timestamp, loc)
	if err != nil {
		return Record{}, &MalformedRowError{Line: line, Column: ColumnTimestamp, Value: timestamp, Err: err}
	}
	v, err := ParseEnergy(energy)
	if err != nil {
		return Record{}, &MalformedRowError{Line: line, Column: ColumnEnergy, Value: energy, Err: err}
	}
	return Record{Timestamp: ts, EnergyKWh: v}, nil
}
