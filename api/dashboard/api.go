package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/kilianp07/homeenergy/core/forecast"
	"github.com/kilianp07/homeenergy/pkg/export"
)

const maxBodyBytes = 1 << 16

// PredictionResponse is the JSON body returned by POST /api/predict.
type PredictionResponse struct {
	ID             string         `json:"id"`
	Input          forecast.Input `json:"input"`
	Value          float64        `json:"value"`
	Rounded        float64        `json:"rounded"`
	Display        string         `json:"display"`
	Classification string         `json:"classification"`
	Severity       string         `json:"severity"`
	Advice         string         `json:"advice"`
	Baseline       float64        `json:"baseline"`
	At             time.Time      `json:"at"`
}

// NewPredictionResponse converts an engine result.
func NewPredictionResponse(r forecast.Result) PredictionResponse {
	return PredictionResponse{
		ID:             r.ID,
		Input:          r.Input,
		Value:          r.Value,
		Rounded:        r.Rounded(),
		Display:        r.Display(),
		Classification: r.Classification.String(),
		Severity:       r.Classification.Severity(),
		Advice:         r.Classification.Advice(),
		Baseline:       r.Baseline,
		At:             r.At,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request) {
	report := export.NewReport(s.opts.Dataset, s.opts.Summary)
	status := http.StatusOK
	if !report.Available {
		status = http.StatusNotFound
	}
	writeJSON(w, status, report)
}

// handlePredictJSON accepts a partial Input; omitted fields keep their
// default values.
func (s *Server) handlePredictJSON(w http.ResponseWriter, r *http.Request) {
	if !s.Available() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: forecast.ErrEngineUnavailable.Error()})
		return
	}
	in := forecast.DefaultInput()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	res, err := s.opts.Engine.Predict(r.Context(), in)
	if err != nil {
		status := s.predictError(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "prediction failed"
		}
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, NewPredictionResponse(res))
}
