package strategies

import (
	"bytes"
	"context"
	"io"
	"mycase-search/internal/dispatch"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Bare issues the request with a plain net/http client and nothing else.
type Bare struct {
	name   string
	client *http.Client
}

func NewBare(name string) Bare {
	return Bare{
		name: name,
		client: &http.Client{
			Transport:     otelhttp.NewTransport(http.DefaultTransport.(*http.Transport).Clone()),
			CheckRedirect: checkRedirect,
		},
	}
}

func (b Bare) Name() string {
	return b.name
}

func (b Bare) Do(ctx context.Context, req dispatch.Request) (dispatch.Result, error) {
	ctx, cancel := requestContext(ctx, req.Timeout, req.MaxRedirects)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return dispatch.Result{}, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	res, err := b.client.Do(httpReq)
	if err != nil {
		return dispatch.Result{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return dispatch.Result{}, err
	}

	return dispatch.Result{
		StatusCode: res.StatusCode,
		Headers:    FlattenHeaders(res.Header),
		Body:       string(body),
	}, nil
}
