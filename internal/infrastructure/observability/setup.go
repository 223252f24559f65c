package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup wires logging, metrics and tracing for a service in one call. It
// returns the tracer shutdown hook and the handler to mount on /metrics.
func Setup(serviceName string) (func(context.Context) error, http.Handler) {
	InitLogger()
	InitMetrics()
	return InitTracing(serviceName), promhttp.Handler()
}
