package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/homeenergy/core/factory"
	"github.com/kilianp07/homeenergy/core/history"
)

// HistoryConfig selects the dataset used for analytics and the baseline.
type HistoryConfig struct {
	// Source is the registered source type: "csv" or "sqlite".
	Source string `json:"source"`
	Path   string `json:"path"`
	// Table is only used by the sqlite source.
	Table string `json:"table"`
	// MalformedRows is "reject" (fail the load) or "skip".
	MalformedRows string `json:"malformed_rows"`
	// Location interprets timestamps that carry no zone.
	Location string `json:"location"`
}

func (c *HistoryConfig) SetDefaults() {
	if c.Source == "" {
		c.Source = "csv"
	}
	if c.Path == "" {
		c.Path = "household_energy.csv"
	}
	if c.Table == "" {
		c.Table = "energy_readings"
	}
	if c.MalformedRows == "" {
		c.MalformedRows = string(history.PolicyReject)
	}
	if c.Location == "" {
		c.Location = "UTC"
	}
}

func (c HistoryConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	if _, err := history.ParsePolicy(c.MalformedRows); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Location); err != nil {
		return fmt.Errorf("location: %w", err)
	}
	return nil
}

// ModuleConfig converts the section for history.NewSource.
func (c HistoryConfig) ModuleConfig() factory.ModuleConfig {
	return factory.ModuleConfig{Type: c.Source, Conf: map[string]any{
		"path":           c.Path,
		"table":          c.Table,
		"malformed_rows": c.MalformedRows,
		"location":       c.Location,
	}}
}

// ModelConfig locates the forecast model artifact.
type ModelConfig struct {
	Path string `json:"path"`
}

func (c *ModelConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "forecast_model.json"
	}
}

func (c ModelConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// ServerConfig configures the dashboard listener.
type ServerConfig struct {
	Address string `json:"address"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8501"
	}
}

func (c ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}
