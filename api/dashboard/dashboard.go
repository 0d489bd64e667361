// Package dashboard serves the household energy dashboard: the analytics
// charts, the prediction form and a small JSON API over the same session.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/kilianp07/homeenergy/core/forecast"
	"github.com/kilianp07/homeenergy/core/history"
	"github.com/kilianp07/homeenergy/core/logger"
	coremon "github.com/kilianp07/homeenergy/core/monitoring"
	infralogger "github.com/kilianp07/homeenergy/infra/logger"
)

//go:embed templates/index.html
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/index.html"))

// Options wires a dashboard to the session state.
type Options struct {
	// Engine is nil when the model could not be loaded.
	Engine    *forecast.Engine
	ModelPath string
	ModelErr  error
	// Summary is nil when the dataset is not available.
	Summary *history.Summary
	Dataset string
	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
	Logger  logger.Logger
}

// Server is the dashboard HTTP handler.
type Server struct {
	opts Options
	log  logger.Logger
	mux  *http.ServeMux
}

// New builds the dashboard routes.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = infralogger.NopLogger{}
	}
	s := &Server{opts: opts, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /predict", s.handlePredictForm)
	s.mux.HandleFunc("GET /charts/hourly", s.handleHourlyChart)
	s.mux.HandleFunc("GET /charts/weekday", s.handleWeekdayChart)
	s.mux.HandleFunc("GET /api/profile", s.handleProfile)
	s.mux.HandleFunc("POST /api/predict", s.handlePredictJSON)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if opts.Metrics != nil {
		s.mux.Handle("GET /metrics", opts.Metrics)
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Available reports whether predictions can be served.
func (s *Server) Available() bool { return s.opts.Engine != nil }

type fieldView struct {
	forecast.Field
	Value string
}

type resultView struct {
	Display        string
	Classification string
	Severity       string
	Advice         string
}

type pageData struct {
	Analytics  bool
	Dataset    string
	ModelError string
	Error      string
	Fields     []fieldView
	Result     *resultView
}

func (s *Server) baseData() pageData {
	d := pageData{Analytics: s.opts.Summary != nil, Dataset: s.opts.Dataset}
	if !s.Available() {
		d.ModelError = ModelUnavailableMessage(s.opts.ModelPath)
	}
	return d
}

// ModelUnavailableMessage is the blocking error shown when no model is loaded.
func ModelUnavailableMessage(path string) string {
	return fmt.Sprintf("Model file '%s' not found. Please upload or train the model first.", path)
}

func fieldsFor(values map[string]string) []fieldView {
	def := forecast.DefaultInput().Vector()
	out := make([]fieldView, len(forecast.Fields))
	for i, f := range forecast.Fields {
		v, ok := values[f.Name]
		if !ok {
			v = formatNumber(def[i], f.Integer)
		}
		out[i] = fieldView{Field: f, Value: v}
	}
	return out
}

func formatNumber(v float64, integer bool) string {
	if integer {
		return strconv.Itoa(int(v))
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s *Server) render(w http.ResponseWriter, status int, d pageData) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, d); err != nil {
		s.log.Errorf("render page: %v", err)
		coremon.CaptureException(err, map[string]string{"module": "dashboard"})
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	d := s.baseData()
	d.Fields = fieldsFor(nil)
	s.render(w, http.StatusOK, d)
}

func (s *Server) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	d := s.baseData()
	if !s.Available() {
		s.render(w, http.StatusServiceUnavailable, d)
		return
	}
	if err := r.ParseForm(); err != nil {
		d.Fields = fieldsFor(nil)
		d.Error = "invalid form submission"
		s.render(w, http.StatusBadRequest, d)
		return
	}
	values := make(map[string]string, len(forecast.Fields))
	for _, f := range forecast.Fields {
		if v, ok := r.PostForm[f.Name]; ok && len(v) > 0 {
			values[f.Name] = strings.TrimSpace(v[0])
		}
	}
	d.Fields = fieldsFor(values)
	in, err := ParseInput(values)
	if err != nil {
		d.Error = err.Error()
		s.render(w, http.StatusBadRequest, d)
		return
	}
	res, err := s.opts.Engine.Predict(r.Context(), in)
	if err != nil {
		status := s.predictError(err)
		d.Error = err.Error()
		if status == http.StatusInternalServerError {
			d.Error = "prediction failed"
		}
		s.render(w, status, d)
		return
	}
	d.Result = &resultView{
		Display:        res.Display(),
		Classification: res.Classification.String(),
		Severity:       res.Classification.Severity(),
		Advice:         res.Classification.Advice(),
	}
	s.render(w, http.StatusOK, d)
}

// predictError maps an engine error to a status code and reports
// unexpected failures.
func (s *Server) predictError(err error) int {
	switch {
	case errors.Is(err, forecast.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		s.log.Errorf("predict: %v", err)
		coremon.CaptureException(err, map[string]string{"module": "dashboard"})
		return http.StatusInternalServerError
	}
}

// ParseInput converts submitted form values into an Input. Every field is
// required and must be numeric; integer fields reject fractional values.
// Bounds are checked by the engine.
func ParseInput(values map[string]string) (forecast.Input, error) {
	var vec [forecast.NumFeatures]float64
	var problems []string
	for i, f := range forecast.Fields {
		raw, ok := values[f.Name]
		if !ok || raw == "" {
			problems = append(problems, f.Name+" is required")
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			problems = append(problems, f.Name+" must be a number")
			continue
		}
		if f.Integer && v != math.Trunc(v) {
			problems = append(problems, f.Name+" must be a whole number")
			continue
		}
		vec[i] = v
	}
	if len(problems) > 0 {
		return forecast.Input{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return forecast.Input{
		IndoorTemperature:  vec[0],
		OutsideTemperature: vec[1],
		DeviceUsage:        int(vec[2]),
		Hour:               int(vec[3]),
		Weekday:            int(vec[4]),
	}, nil
}

// ErrInvalidInput reports a missing or non-numeric form value.
var ErrInvalidInput = errors.New("invalid input")

func (s *Server) handleHourlyChart(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Summary == nil {
		http.Error(w, "analytics not available", http.StatusNotFound)
		return
	}
	s.writeChart(w, HourlyChart(s.opts.Summary.Hourly))
}

func (s *Server) handleWeekdayChart(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Summary == nil {
		http.Error(w, "analytics not available", http.StatusNotFound)
		return
	}
	s.writeChart(w, WeekdayChart(s.opts.Summary.Weekday))
}

func (s *Server) writeChart(w http.ResponseWriter, c renderer) {
	var buf bytes.Buffer
	if err := renderChart(&buf, c); err != nil {
		s.log.Errorf("%v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"model":     s.Available(),
		"analytics": s.opts.Summary != nil,
	})
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
