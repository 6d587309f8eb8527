package monitoring

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
}

// App wraps the New Relic application
type App struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application. A disabled or keyless config
// returns a no-op App.
func New(cfg Config) (*App, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return &App{nil, false}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &App{app, true}, nil
}

// IsEnabled returns whether New Relic is enabled
func (a *App) IsEnabled() bool {
	return a.enabled
}

// Shutdown gracefully shuts down the New Relic application
func (a *App) Shutdown(timeout time.Duration) {
	if !a.enabled || a.Application == nil {
		return
	}
	a.Application.Shutdown(timeout)
}

// RecordCustomEvent records a custom event
func (a *App) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if !a.enabled || a.Application == nil {
		return
	}
	a.Application.RecordCustomEvent(eventType, params)
}

// RecordCustomMetric records a custom metric
func (a *App) RecordCustomMetric(name string, value float64) {
	if !a.enabled || a.Application == nil {
		return
	}
	a.Application.RecordCustomMetric(name, value)
}

// Dispatch event helpers

// RecordRequestCreated records a new service request
func (a *App) RecordRequestCreated(serviceType, vehicleType string, lowBid bool) {
	a.RecordCustomEvent("ServiceRequestCreated", map[string]interface{}{
		"service_type": serviceType,
		"vehicle_type": vehicleType,
		"low_bid":      lowBid,
	})
}

// RecordBidAccepted records a bid acceptance producing a trip
func (a *App) RecordBidAccepted(requestID string, amount float64) {
	a.RecordCustomEvent("BidAccepted", map[string]interface{}{
		"request_id": requestID,
		"amount":     amount,
	})
}

// RecordTripCompleted records trip completion
func (a *App) RecordTripCompleted(tripID string, amount float64) {
	a.RecordCustomEvent("TripCompleted", map[string]interface{}{
		"trip_id": tripID,
		"amount":  amount,
	})
}

// RecordRequestsExpired records a sweeper pass that expired requests
func (a *App) RecordRequestsExpired(count int) {
	a.RecordCustomMetric("custom/requests/expired", float64(count))
}
