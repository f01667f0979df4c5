package endpoint

import (
	"log/slog"
	"net/http"
	"time"
)

// responseRecorder wraps http.ResponseWriter to capture the status code and
// size, and whether anything has been written yet.
type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
	wrote  bool
}

func (r *responseRecorder) WriteHeader(code int) {
	if !r.wrote {
		r.status = code
	}
	r.wrote = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.wrote = true
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// Unwrap returns the underlying ResponseWriter (supports http.ResponseController).
func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// logRequest writes one access log line for a published route.
func (p *publisher) logRequest(r *http.Request, d Descriptor, rec *responseRecorder, outcome Outcome, latency time.Duration) {
	attrs := []slog.Attr{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("route", d.Name),
		slog.Int("status", rec.status),
		slog.String("outcome", string(outcome)),
		slog.Duration("latency", latency),
		slog.Int("size", rec.size),
	}

	if id := GetRequestID(r); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}

	p.logger.LogAttrs(r.Context(), slog.LevelInfo, "request", attrs...)
}
