package httpmiddleware

import (
	"net/http"

	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument wraps the handler with OpenTelemetry HTTP tracing plus a
// request counter labeled by method and status code.
func Instrument(operation string, m *app.Telemetry) Middleware {
	meter := m.MeterProvider().Meter("storefront.httpmiddleware")
	requests, _ := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Completed HTTP requests"),
	)

	return func(next http.Handler) http.Handler {
		counted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			requests.Add(r.Context(), 1, metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.Int("http.status_code", sw.status),
			))
		})

		return otelhttp.NewHandler(counted, operation,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}
