package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	Logins           metric.Int64Counter
	AuthFailures     metric.Int64Counter
	OrdersCreated    metric.Int64Counter
	PaymentsVerified metric.Int64Counter
	PaymentsFailed   metric.Int64Counter
	Downloads        metric.Int64Counter
	DownloadDenials  metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Get returns the global metric instruments, creating them on first use
// from the globally configured MeterProvider. Before InitOtelProviders
// runs this yields no-op instruments, which keeps tests free of setup.
func Get() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("nopaper")
		m := &AppMetrics{}

		m.Logins = mustCounter(meter, "auth_logins_total",
			"Total number of successful logins")
		m.AuthFailures = mustCounter(meter, "auth_failures_total",
			"Total number of rejected credential checks")
		m.OrdersCreated = mustCounter(meter, "checkout_orders_created_total",
			"Total number of pending orders created")
		m.PaymentsVerified = mustCounter(meter, "checkout_payments_verified_total",
			"Total number of payments confirmed as paid")
		m.PaymentsFailed = mustCounter(meter, "checkout_payments_failed_total",
			"Total number of payment verifications that did not confirm")
		m.Downloads = mustCounter(meter, "catalog_downloads_total",
			"Total number of authorized book downloads")
		m.DownloadDenials = mustCounter(meter, "catalog_download_denials_total",
			"Total number of download attempts without entitlement")

		appMetrics = m
	})
	return appMetrics
}

func mustCounter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name,
		metric.WithDescription(description),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return c
}
