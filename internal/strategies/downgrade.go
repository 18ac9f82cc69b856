package strategies

import (
	"context"
	"fmt"
	"mycase-search/internal/dispatch"
	"net/url"
)

// Downgrade delegates to another strategy after rewriting an https URL to
// plain http.
type Downgrade struct {
	name  string
	inner dispatch.Strategy
}

func NewDowngrade(name string, inner dispatch.Strategy) Downgrade {
	return Downgrade{name: name, inner: inner}
}

func (d Downgrade) Name() string {
	return d.name
}

func (d Downgrade) Do(ctx context.Context, req dispatch.Request) (dispatch.Result, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return dispatch.Result{}, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "https" {
		u.Scheme = "http"
	}
	req.URL = u.String()
	return d.inner.Do(ctx, req)
}
