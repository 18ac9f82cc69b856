package mycase

import (
	"encoding/json"
	"mycase-search/internal/dispatch"
	"net/http"
	"time"
)

const (
	Endpoint = "https://public.courts.in.gov/mycase/Search/SearchCases"
	Origin   = "https://public.courts.in.gov"
	Referer  = "https://public.courts.in.gov/mycase/"
	Accept   = "application/json,text/html,application/xhtml+xml,application/xml,text/*;q=0.9,image/*;q=0.8,*/*;q=0.7"

	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 5
)

type Options struct {
	// Endpoint overrides the search endpoint, empty means Endpoint.
	Endpoint string
	// UserAgent is sent as a browser identification if non-empty.
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
}

// NewRequest builds the fixed descriptor for a search.
func NewRequest(search SearchRequest, opts Options) (dispatch.Request, error) {
	body, err := json.Marshal(search.Payload())
	if err != nil {
		return dispatch.Request{}, err
	}

	headers := map[string]string{
		"Content-Type":     "application/json",
		"X-Requested-With": "XMLHttpRequest",
		"Origin":           Origin,
		"Referer":          Referer,
		"Accept":           Accept,
	}
	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}

	req := dispatch.Request{
		Method:       http.MethodPost,
		URL:          opts.Endpoint,
		Headers:      headers,
		Body:         body,
		Timeout:      opts.Timeout,
		MaxRedirects: opts.MaxRedirects,
	}
	if req.URL == "" {
		req.URL = Endpoint
	}
	if req.Timeout <= 0 {
		req.Timeout = DefaultTimeout
	}
	if req.MaxRedirects <= 0 {
		req.MaxRedirects = DefaultMaxRedirects
	}
	return req, nil
}
