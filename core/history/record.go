package history

import "time"

// Record is a single historical energy reading.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	EnergyKWh float64   `json:"energy_consumption"`
}

// Derived is a Record annotated with its calendar features.
type Derived struct {
	Record
	Hour int `json:"hour"`
	// Weekday counts from Monday (0) to Sunday (6).
	Weekday int `json:"weekday"`
}

// Derive computes the hour and weekday of r from its timestamp.
func Derive(r Record) Derived {
	return Derived{Record: r, Hour: r.Timestamp.Hour(), Weekday: WeekdayOf(r.Timestamp)}
}

// WeekdayOf returns the Monday-based weekday index of t.
func WeekdayOf(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekdayLabel returns a short English label for a Monday-based weekday index.
func WeekdayLabel(d int) string {
	if d < 0 || d >= len(weekdayLabels) {
		return "?"
	}
	return weekdayLabels[d]
}
