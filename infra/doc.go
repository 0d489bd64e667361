// Package infra contains technical adapters: dataset sources, model kinds,
// metrics exporters, Sentry and MQTT. These packages depend only on the
// interfaces defined in the core packages.
package infra
