package strategies

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// FlattenHeaders joins repeated header values with ", ".
func FlattenHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for k, values := range headers {
		out[k] = strings.Join(values, ", ")
	}
	return out
}

type maxRedirectsKeyType int

var maxRedirectsKey maxRedirectsKeyType

func withMaxRedirects(ctx context.Context, max int) context.Context {
	return context.WithValue(ctx, maxRedirectsKey, max)
}

// checkRedirect caps redirects at the limit carried by the request context.
func checkRedirect(req *http.Request, via []*http.Request) error {
	max, ok := req.Context().Value(maxRedirectsKey).(int)
	if !ok {
		max = 10
	}
	if len(via) > max {
		return fmt.Errorf("stopped after %d redirects", max)
	}
	return nil
}

// requestContext applies the per-call timeout and redirect cap.
func requestContext(ctx context.Context, timeout time.Duration, maxRedirects int) (context.Context, context.CancelFunc) {
	ctx = withMaxRedirects(ctx, maxRedirects)
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
