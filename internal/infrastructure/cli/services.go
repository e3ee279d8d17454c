package cli

import (
	"log/slog"

	"github.com/felixgeelhaar/featurecraft/internal/infrastructure/wiring"
)

// loadTrackerServices wires what read-only and feature creation commands need.
func loadTrackerServices() (*wiring.AppServices, error) {
	return wiring.BuildTrackerServices(appConfig, slog.Default())
}

// loadServices wires everything, including the completion provider.
func loadServices() (*wiring.AppServices, error) {
	return wiring.BuildAppServices(appConfig, slog.Default())
}
