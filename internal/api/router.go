package api

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/harxxhilgg/univent/internal/api/websocket"
	"github.com/harxxhilgg/univent/internal/handler"
	"github.com/harxxhilgg/univent/internal/infrastructure/auth"
	"github.com/harxxhilgg/univent/internal/infrastructure/observability"
	"github.com/harxxhilgg/univent/internal/infrastructure/redis"
)

// SetupRouter mounts the auth and event APIs under /api, the live event
// feed, and the Prometheus endpoint.
func SetupRouter(
	h *handler.Handler,
	feed *websocket.Hub,
	redisClient redis.Client,
	issuer *auth.TokenIssuer,
	metricsHandler http.Handler,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Univent backend is up"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"API root is working"}`))
	}).Methods(http.MethodGet)

	h.RegisterAuthRoutes(api.PathPrefix("/auth").Subrouter())

	events := api.PathPrefix("/events").Subrouter()
	protected := api.PathPrefix("/events").Subrouter()
	protected.Use(auth.Middleware(redisClient, issuer))
	h.RegisterEventRoutes(events, protected)

	events.HandleFunc("/feed", feed.HandleFeed).Methods(http.MethodGet)

	r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	return r
}

// metricsMiddleware records request counts and latencies per endpoint.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tmpl
			}
		}
		status := fmt.Sprintf("%d", recorder.Status())
		observability.RequestCounter.WithLabelValues(r.Method, endpoint, status).Inc()
		observability.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status for the metrics labels.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Hijack lets the websocket upgrade reach the underlying connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
