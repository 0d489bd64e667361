package history

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// FallbackBaseline is the reference consumption in kWh used when no dataset is available.
const FallbackBaseline = 3.0

// Profile maps a grouping key (hour or weekday) to the mean consumption of its records.
// Keys are only present for groups that have data.
type Profile map[int]float64

// Point is one entry of a Profile.
type Point struct {
	Key  int     `json:"key"`
	Mean float64 `json:"mean"`
}

// Keys returns the profile keys in ascending order.
func (p Profile) Keys() []int {
	keys := make([]int, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Points returns the profile entries in ascending key order.
func (p Profile) Points() []Point {
	keys := p.Keys()
	pts := make([]Point, len(keys))
	for i, k := range keys {
		pts[i] = Point{Key: k, Mean: p[k]}
	}
	return pts
}

// Summary holds the aggregates computed from a dataset.
type Summary struct {
	Records  []Derived `json:"-"`
	Count    int       `json:"count"`
	Baseline float64   `json:"baseline"`
	Hourly   Profile   `json:"-"`
	Weekday  Profile   `json:"-"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
}

// Summarize derives calendar features for every record and computes the
// baseline and grouped means. It returns nil when records is empty.
func Summarize(records []Record) *Summary {
	if len(records) == 0 {
		return nil
	}
	derived := make([]Derived, len(records))
	values := make([]float64, len(records))
	byHour := map[int][]float64{}
	byWeekday := map[int][]float64{}
	from, to := records[0].Timestamp, records[0].Timestamp
	for i, r := range records {
		d := Derive(r)
		derived[i] = d
		values[i] = r.EnergyKWh
		byHour[d.Hour] = append(byHour[d.Hour], r.EnergyKWh)
		byWeekday[d.Weekday] = append(byWeekday[d.Weekday], r.EnergyKWh)
		if r.Timestamp.Before(from) {
			from = r.Timestamp
		}
		if r.Timestamp.After(to) {
			to = r.Timestamp
		}
	}
	return &Summary{
		Records:  derived,
		Count:    len(derived),
		Baseline: stat.Mean(values, nil),
		Hourly:   groupMeans(byHour),
		Weekday:  groupMeans(byWeekday),
		From:     from,
		To:       to,
	}
}

func groupMeans(groups map[int][]float64) Profile {
	p := make(Profile, len(groups))
	for k, vs := range groups {
		p[k] = stat.Mean(vs, nil)
	}
	return p
}

// BaselineOf returns the summary baseline, or FallbackBaseline when s is nil.
func BaselineOf(s *Summary) float64 {
	if s == nil {
		return FallbackBaseline
	}
	return s.Baseline
}
