package config

import (
	"fmt"

	"github.com/kilianp07/homeenergy/core/alert"
	"github.com/kilianp07/homeenergy/infra/mqtt"
)

// AlertsConfig enables MQTT notifications for HIGH forecasts.
type AlertsConfig struct {
	Enabled bool        `json:"enabled"`
	Topic   string      `json:"topic"`
	QoS     byte        `json:"qos"`
	MQTT    mqtt.Config `json:"mqtt"`
}

func (c *AlertsConfig) SetDefaults() {
	if c.Topic == "" {
		c.Topic = alert.DefaultTopic
	}
}

func (c AlertsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when alerts are enabled")
	}
	if c.QoS > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2")
	}
	return nil
}
