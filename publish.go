package endpoint

import (
	"log/slog"
	"net/http"
	"time"
)

// Outcome describes how a request left the pipeline.
type Outcome string

// Pipeline outcomes, used as log attributes and metric labels.
const (
	OutcomeMaterialized Outcome = "materialized" // result written by the Materializer
	OutcomeDirect       Outcome = "direct"       // handler wrote the response itself
	OutcomeRecovered    Outcome = "recovered"    // Catch turned an error into a result
	OutcomeFailed       Outcome = "failed"       // error written by the ErrorHandler
)

// Option configures Publish.
type Option func(*publisher)

// WithLogger sets the logger used for request and failure logs. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *publisher) {
		p.logger = l
	}
}

// WithErrorHandler sets how unrecovered errors are written. Defaults to
// WriteProblem.
func WithErrorHandler(h ErrorHandler) Option {
	return func(p *publisher) {
		p.errorHandler = h
	}
}

// WithEncoder registers an additional response body encoder.
func WithEncoder(enc Encoder) Option {
	return func(p *publisher) {
		p.encoders = append(p.encoders, enc)
	}
}

// WithDecoder registers an additional request body decoder.
func WithDecoder(dec Decoder) Option {
	return func(p *publisher) {
		p.decoders = append(p.decoders, dec)
	}
}

// WithMetrics records every request in m.
func WithMetrics(m *Metrics) Option {
	return func(p *publisher) {
		p.metrics = m
	}
}

type publisher struct {
	parent       *Container
	logger       *slog.Logger
	errorHandler ErrorHandler
	encoders     []Encoder
	decoders     []Decoder
	metrics      *Metrics

	codecs       *codecRegistry
	materializer *Materializer
}

// Publish registers one route on router for every descriptor in table, in
// registration order. Handlers are constructed per request from a scope
// created from parent.
//
// If the table holds registration errors, they are returned and nothing is
// registered.
func Publish(router Router, parent *Container, table *Table, opts ...Option) error {
	if err := table.Err(); err != nil {
		return err
	}

	p := &publisher{
		parent:       parent,
		logger:       slog.Default(),
		errorHandler: WriteProblem,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.codecs = newCodecRegistry(p.encoders, p.decoders)
	p.materializer = &Materializer{codecs: p.codecs}

	for _, d := range table.Descriptors() {
		h := p.handler(d)
		for i := len(d.middleware) - 1; i >= 0; i-- {
			h = d.middleware[i](h)
		}
		router.Handle(d.Method, d.Path, h)
		p.logger.Debug("route published", "method", d.Method, "path", d.Path, "handler", d.Name)
	}
	return nil
}

func (p *publisher) handler(d Descriptor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		outcome := p.serve(rec, r, d)

		latency := time.Since(start)
		p.logRequest(r, d, rec, outcome, latency)
		if p.metrics != nil {
			p.metrics.observe(d, outcome, latency)
		}
	})
}

// serve runs the pipeline for one request and hands its result to the
// Materializer. The handler sees rec as its http.ResponseWriter.
func (p *publisher) serve(rec *responseRecorder, r *http.Request, d Descriptor) Outcome {
	s, err := newRequestScope(p.parent, rec, r)
	if err != nil {
		return p.fail(rec, r, d, err)
	}

	res, recovered, err := d.pipeline(s, r, p.codecs)
	if err != nil {
		return p.fail(rec, r, d, err)
	}

	if res.Handled() {
		if !rec.wrote {
			p.logger.WarnContext(r.Context(), "handler returned no result and wrote no response", "route", d.Name)
		}
		return OutcomeDirect
	}

	if rec.wrote {
		p.logger.WarnContext(r.Context(), "handler wrote the response and also returned a result", "route", d.Name)
	}

	if err := p.materializer.Materialize(rec, r, res); err != nil {
		return p.fail(rec, r, d, err)
	}

	if recovered {
		return OutcomeRecovered
	}
	return OutcomeMaterialized
}

func (p *publisher) fail(rec *responseRecorder, r *http.Request, d Descriptor, err error) Outcome {
	p.logger.ErrorContext(r.Context(), "request failed", "route", d.Name, "err", err)

	// The response is already on its way; there is no status left to set.
	if rec.wrote {
		return OutcomeFailed
	}
	p.errorHandler(rec, r, err)
	return OutcomeFailed
}
