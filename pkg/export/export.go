// Package export renders dataset profiles for the command line and for
// download as JSON, CSV or an aligned text table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/kilianp07/homeenergy/core/history"
)

// Row is one entry of an hourly or weekday profile.
type Row struct {
	Key   int     `json:"key"`
	Label string  `json:"label"`
	Mean  float64 `json:"mean_kwh"`
}

// Report is the exportable view of a dataset summary.
type Report struct {
	Source    string     `json:"source"`
	Available bool       `json:"available"`
	Records   int        `json:"records"`
	Baseline  float64    `json:"baseline_kwh"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
	Hourly    []Row      `json:"hourly"`
	Weekday   []Row      `json:"weekday"`
}

// NewReport builds a report from s. A nil summary yields an unavailable
// report carrying the fallback baseline.
func NewReport(source string, s *history.Summary) Report {
	r := Report{Source: source, Baseline: history.BaselineOf(s), Hourly: []Row{}, Weekday: []Row{}}
	if s == nil {
		return r
	}
	from, to := s.From, s.To
	r.Available = true
	r.Records = s.Count
	r.From, r.To = &from, &to
	for _, p := range s.Hourly.Points() {
		r.Hourly = append(r.Hourly, Row{Key: p.Key, Label: fmt.Sprintf("%02d:00", p.Key), Mean: p.Mean})
	}
	for _, p := range s.Weekday.Points() {
		r.Weekday = append(r.Weekday, Row{Key: p.Key, Label: history.WeekdayLabel(p.Key), Mean: p.Mean})
	}
	return r
}

// WriteJSON writes the report to w in JSON format.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one line per profile entry followed by the baseline.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"profile", "key", "label", "mean_kwh"}); err != nil {
		return err
	}
	write := func(profile string, rows []Row) error {
		for _, row := range rows {
			rec := []string{profile, strconv.Itoa(row.Key), row.Label, formatKWh(row.Mean)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	}
	if err := write("hourly", r.Hourly); err != nil {
		return err
	}
	if err := write("weekday", r.Weekday); err != nil {
		return err
	}
	if err := cw.Write([]string{"baseline", "", "", formatKWh(r.Baseline)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable prints the report as aligned columns for terminals.
func WriteTable(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if !r.Available {
		fmt.Fprintf(tw, "Analytics not available: dataset %q not found.\n", r.Source)
		fmt.Fprintf(tw, "Baseline (fallback)\t%.2f kWh\n", r.Baseline)
		return tw.Flush()
	}
	fmt.Fprintf(tw, "Dataset\t%s\n", r.Source)
	fmt.Fprintf(tw, "Records\t%d\n", r.Records)
	if r.From != nil && r.To != nil {
		fmt.Fprintf(tw, "Period\t%s to %s\n", r.From.Format(time.RFC3339), r.To.Format(time.RFC3339))
	}
	fmt.Fprintf(tw, "Baseline\t%.2f kWh\n", r.Baseline)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Hour\tAvg Energy (kWh)")
	for _, row := range r.Hourly {
		fmt.Fprintf(tw, "%s\t%.3f\n", row.Label, row.Mean)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Weekday\tAvg Energy (kWh)")
	for _, row := range r.Weekday {
		fmt.Fprintf(tw, "%s\t%.3f\n", row.Label, row.Mean)
	}
	return tw.Flush()
}

// Write dispatches on format: "table", "csv" or "json".
func Write(w io.Writer, format string, r Report) error {
	switch format {
	case "", "table":
		return WriteTable(w, r)
	case "csv":
		return WriteCSV(w, r)
	case "json":
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func formatKWh(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
