package strategies

import (
	"context"
	"fmt"
	"mycase-search/internal/dispatch"
	"mycase-search/lib/restyutil"
	"mycase-search/lib/telemetry"
	"net/http"
	"net/http/cookiejar"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

type HardenedOptions struct {
	// Proxy routes requests through a rotating proxy, nil means a direct connection.
	Proxy *ProxyRotator
	// RetryCount is the number of retries resty makes on a transport error.
	RetryCount int
	// Output receives request/response dumps when debug logging is enabled.
	Output restyutil.InstrumentOutput
}

// Hardened sends requests with a browser-like TLS fingerprint and header set
// through resty.
type Hardened struct {
	name   string
	client *resty.Client
}

func NewHardened(name string, opts HardenedOptions) (Hardened, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if opts.Proxy != nil {
		transport.Proxy = opts.Proxy.Proxy
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return Hardened{}, err
	}

	client := resty.NewWithClient(&http.Client{
		Transport: cloudflarebp.AddCloudFlareByPass(transport),
		Jar:       jar,
	})
	client.SetLogger(restyutil.SlogLogger{Client: name})
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(checkRedirect))
	client.SetRetryCount(opts.RetryCount)

	telemetry.InstrumentResty(client, fmt.Sprintf("mycase-search/strategies/%s", name))
	restyutil.InstrumentClient(client, name, opts.Output)

	return Hardened{name: name, client: client}, nil
}

func (h Hardened) Name() string {
	return h.name
}

func (h Hardened) Do(ctx context.Context, req dispatch.Request) (dispatch.Result, error) {
	ctx, cancel := requestContext(ctx, req.Timeout, req.MaxRedirects)
	defer cancel()

	res, err := h.client.R().
		SetContext(ctx).
		SetHeaders(req.Headers).
		SetBody(req.Body).
		Execute(req.Method, req.URL)
	if err != nil {
		return dispatch.Result{}, err
	}

	return dispatch.Result{
		StatusCode: res.StatusCode(),
		Headers:    FlattenHeaders(res.Header()),
		Body:       string(res.Body()),
	}, nil
}
