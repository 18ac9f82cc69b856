package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("mycase-search/internal/dispatch")

// Request describes a single outbound HTTP call. Every strategy receives the
// same Request and must not mutate it.
type Request struct {
	Method       string
	URL          string
	Headers      map[string]string
	Body         []byte
	Timeout      time.Duration
	MaxRedirects int
}

// Result is whatever HTTP response a strategy managed to obtain.
type Result struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// Success reports whether the status code is 2xx.
func (r Result) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Strategy is one way of delivering a Request.
//
// Do must only return an error when no HTTP response was obtained at all,
// an error status code is still a Result.
type Strategy interface {
	Name() string
	Do(ctx context.Context, req Request) (Result, error)
}

// AttemptError is the failure of a single strategy.
type AttemptError struct {
	Strategy string
	Err      error
}

func (e AttemptError) Error() string {
	return fmt.Sprintf("%s: %s", e.Strategy, e.Err.Error())
}

func (e AttemptError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned when every strategy failed.
type ExhaustedError struct {
	Attempts []AttemptError
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "no transport strategies configured"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return fmt.Sprintf(
		"all %d transport strategies failed: %s",
		len(e.Attempts),
		strings.Join(parts, "; "),
	)
}

func (e *ExhaustedError) Unwrap() []error {
	out := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		out[i] = a
	}
	return out
}

// Dispatcher tries its strategies in order until one of them returns a Result.
type Dispatcher struct {
	strategies []Strategy
}

func New(strategies ...Strategy) Dispatcher {
	return Dispatcher{strategies: strategies}
}

// Strategies returns the names of the configured strategies in order.
func (d Dispatcher) Strategies() []string {
	names := make([]string, len(d.strategies))
	for i, s := range d.strategies {
		names[i] = s.Name()
	}
	return names
}

func (d Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	ctx, span := tracer.Start(ctx, "Dispatch")
	defer span.End()

	exhausted := &ExhaustedError{}
	for i, strategy := range d.strategies {
		if err := ctx.Err(); err != nil {
			exhausted.Attempts = append(exhausted.Attempts, AttemptError{
				Strategy: strategy.Name(),
				Err:      err,
			})
			break
		}

		slog.InfoContext(
			ctx, "attempting strategy",
			"strategy", strategy.Name(),
			"attempt", i+1,
			"of", len(d.strategies),
		)
		res, err := d.attempt(ctx, strategy, req)
		if err != nil {
			slog.WarnContext(
				ctx, "strategy failed",
				"strategy", strategy.Name(),
				"err", err,
			)
			exhausted.Attempts = append(exhausted.Attempts, AttemptError{
				Strategy: strategy.Name(),
				Err:      err,
			})
			continue
		}

		slog.InfoContext(
			ctx, "strategy succeeded",
			"strategy", strategy.Name(),
			"status", res.StatusCode,
		)
		span.SetAttributes(attribute.String("dispatch.strategy", strategy.Name()))
		return res, nil
	}

	span.RecordError(exhausted)
	span.SetStatus(codes.Error, "all strategies failed")
	return Result{}, exhausted
}

func (d Dispatcher) attempt(ctx context.Context, strategy Strategy, req Request) (Result, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("strategy:%s", strategy.Name()))
	defer span.End()

	res, err := strategy.Do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "strategy failed")
		return Result{}, err
	}
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))
	return res, nil
}
