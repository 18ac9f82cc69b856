package search

import (
	"context"
	"fmt"
	"log/slog"
	"mycase-search/internal/dispatch"
	"mycase-search/internal/mycase"
	"mycase-search/internal/sink"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("mycase-search/internal/search")

// Dispatcher delivers a request, see dispatch.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) (dispatch.Result, error)
}

type Params struct {
	// Input is the raw input object, it is stored as-is in the success record.
	Input      map[string]any
	Options    mycase.Options
	Dispatcher Dispatcher
	Sink       sink.Sink
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run performs a single search and pushes exactly one record to the sink.
// It returns an error when no successful record could be produced, the
// failure record has already been pushed by then.
func Run(ctx context.Context, p Params) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	if p.Now == nil {
		p.Now = time.Now
	}

	record, runErr := run(ctx, p)
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, "search failed")
		slog.ErrorContext(ctx, "search failed", "err", runErr)
		record = sink.NewFailure(p.Now(), runErr)
	}

	err := p.Sink.Push(ctx, record)
	if err != nil {
		span.RecordError(err)
		if runErr != nil {
			return fmt.Errorf("%w (failed to save failure record: %s)", runErr, err.Error())
		}
		return fmt.Errorf("save record: %w", err)
	}
	slog.InfoContext(ctx, "record saved", "success", record.Success)

	return runErr
}

func run(ctx context.Context, p Params) (sink.Record, error) {
	slog.InfoContext(ctx, "input received", "input", p.Input)

	search, err := mycase.FromInput(p.Input)
	if err != nil {
		return sink.Record{}, err
	}
	req, err := mycase.NewRequest(search, p.Options)
	if err != nil {
		return sink.Record{}, err
	}

	slog.InfoContext(ctx, "making request", "url", req.URL)
	slog.InfoContext(ctx, "request payload", "payload", string(req.Body))

	res, err := p.Dispatcher.Dispatch(ctx, req)
	if err != nil {
		return sink.Record{}, err
	}

	slog.InfoContext(ctx, "response status", "status", res.StatusCode)
	slog.DebugContext(ctx, "response headers", "headers", res.Headers)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.status_code", res.StatusCode))

	response := mycase.ParseResponse(res)
	if _, ok := response.(mycase.RawResponse); ok {
		slog.WarnContext(ctx, "failed to parse json, storing raw response", "status", res.StatusCode)
	}

	return sink.Record{
		Timestamp:  sink.Timestamp(p.Now()),
		Input:      p.Input,
		Response:   response,
		StatusCode: res.StatusCode,
		Success:    res.Success(),
	}, nil
}
