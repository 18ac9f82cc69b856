package strategies

import (
	"context"
	"io"
	"mycase-search/internal/dispatch"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type received struct {
	method  string
	path    string
	headers http.Header
	body    string
}

func recordingServer(t testing.TB, status int, response string) (*httptest.Server, *[]received) {
	var mu sync.Mutex
	var requests []received
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, received{
			method:  r.Method,
			path:    r.URL.Path,
			headers: r.Header.Clone(),
			body:    string(body),
		})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Add("X-Trace", "one")
		w.Header().Add("X-Trace", "two")
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func searchRequest(url string) dispatch.Request {
	return dispatch.Request{
		Method: http.MethodPost,
		URL:    url,
		Headers: map[string]string{
			"Content-Type":     "application/json",
			"X-Requested-With": "XMLHttpRequest",
			"Origin":           "https://public.courts.in.gov",
		},
		Body:         []byte(`{"CourtItemID":"123"}`),
		Timeout:      5 * time.Second,
		MaxRedirects: 5,
	}
}

func assertSearchRequest(t testing.TB, r received) {
	require.Equal(t, http.MethodPost, r.method)
	require.Equal(t, "/mycase/Search/SearchCases", r.path)
	require.Equal(t, "application/json", r.headers.Get("Content-Type"))
	require.Equal(t, "XMLHttpRequest", r.headers.Get("X-Requested-With"))
	require.Equal(t, "https://public.courts.in.gov", r.headers.Get("Origin"))
	require.Equal(t, `{"CourtItemID":"123"}`, r.body)
}

func TestBare(t *testing.T) {
	server, requests := recordingServer(t, http.StatusOK, `{"Results":[]}`)

	res, err := NewBare(NameFetch).Do(
		context.Background(),
		searchRequest(server.URL+"/mycase/Search/SearchCases"),
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, `{"Results":[]}`, res.Body)
	require.Equal(t, "one, two", res.Headers["X-Trace"])

	require.Len(t, *requests, 1)
	assertSearchRequest(t, (*requests)[0])
}

func TestHardened(t *testing.T) {
	server, requests := recordingServer(t, http.StatusOK, ` {"Results":[]}`)

	hardened, err := NewHardened(NameHardened, HardenedOptions{})
	require.NoError(t, err)
	require.Equal(t, NameHardened, hardened.Name())

	res, err := hardened.Do(
		context.Background(),
		searchRequest(server.URL+"/mycase/Search/SearchCases"),
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	// the body is kept exactly as received
	require.Equal(t, ` {"Results":[]}`, res.Body)

	require.Len(t, *requests, 1)
	assertSearchRequest(t, (*requests)[0])
	require.NotEmpty(t, (*requests)[0].headers.Get("User-Agent"))
}

func TestErrorStatusIsNotAnError(t *testing.T) {
	server, _ := recordingServer(t, http.StatusForbidden, "<html><title>Forbidden</title></html>")
	url := server.URL + "/mycase/Search/SearchCases"

	hardened, err := NewHardened(NameHardened, HardenedOptions{RetryCount: 2})
	require.NoError(t, err)

	for _, strategy := range []dispatch.Strategy{hardened, NewBare(NameFetch)} {
		res, err := strategy.Do(context.Background(), searchRequest(url))
		require.NoError(t, err, strategy.Name())
		require.Equal(t, http.StatusForbidden, res.StatusCode, strategy.Name())
		require.Contains(t, res.Body, "Forbidden")
	}
}

func TestRedirectLimit(t *testing.T) {
	var hops int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hops++
		mu.Unlock()
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer server.Close()

	req := searchRequest(server.URL + "/start")
	req.MaxRedirects = 3

	_, err := NewBare(NameFetch).Do(context.Background(), req)
	require.Error(t, err)
	require.Contains(t, err.Error(), "stopped after 3 redirects")
	// the first request plus three followed redirects
	require.Equal(t, 4, hops)

	hardened, err := NewHardened(NameHardened, HardenedOptions{})
	require.NoError(t, err)
	_, err = hardened.Do(context.Background(), req)
	require.Error(t, err)
	require.Contains(t, err.Error(), "stopped after 3 redirects")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	req := searchRequest(server.URL)
	req.Timeout = 50 * time.Millisecond

	_, err := NewBare(NameFetch).Do(context.Background(), req)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewBare(NameFetch).Do(context.Background(), searchRequest(url))
	require.Error(t, err)
}

func TestDowngrade(t *testing.T) {
	server, requests := recordingServer(t, http.StatusOK, `{}`)
	secureUrl := strings.Replace(server.URL, "http://", "https://", 1) + "/mycase/Search/SearchCases"

	downgrade := NewDowngrade(NamePlainHttp, NewBare(NamePlainHttp))
	require.Equal(t, NamePlainHttp, downgrade.Name())

	req := searchRequest(secureUrl)
	res, err := downgrade.Do(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, *requests, 1)
	assertSearchRequest(t, (*requests)[0])

	// the caller's request is left untouched
	require.Equal(t, secureUrl, req.URL)
}

func TestProxyRotator(t *testing.T) {
	_, err := NewProxyRotator(nil)
	require.Error(t, err)
	_, err = NewProxyRotator([]string{"not a url"})
	require.Error(t, err)

	rotator, err := NewProxyRotator([]string{"http://a:8000", "http://b:8000"})
	require.NoError(t, err)
	require.Equal(t, 2, rotator.Len())

	var hosts []string
	for i := 0; i < 4; i++ {
		u, err := rotator.Proxy(nil)
		require.NoError(t, err)
		hosts = append(hosts, u.Host)
	}
	require.Equal(t, []string{"a:8000", "b:8000", "a:8000", "b:8000"}, hosts)
}

func proxyServer(t testing.TB, name string, hits *[]string, mu *sync.Mutex) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*hits = append(*hits, name+" "+r.URL.String())
		mu.Unlock()
		w.Write([]byte(`{"proxy":"` + name + `"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHardenedThroughProxy(t *testing.T) {
	var mu sync.Mutex
	var hits []string
	first := proxyServer(t, "first", &hits, &mu)
	second := proxyServer(t, "second", &hits, &mu)

	rotator, err := NewProxyRotator([]string{first.URL, second.URL})
	require.NoError(t, err)
	hardened, err := NewHardened(NameHardenedProxy, HardenedOptions{Proxy: rotator})
	require.NoError(t, err)

	// the target is never resolved, the proxy answers for it
	target := "http://court-search.invalid/mycase/Search/SearchCases"
	for _, expected := range []string{"first", "second"} {
		res, err := hardened.Do(context.Background(), searchRequest(target))
		require.NoError(t, err)
		require.Equal(t, `{"proxy":"`+expected+`"}`, res.Body)
	}
	require.Equal(t, []string{"first " + target, "second " + target}, hits)
}

func TestChain(t *testing.T) {
	chain, err := Chain(Config{})
	require.NoError(t, err)
	require.Equal(t, []string{NameHardened, NameFetch, NamePlainHttp}, names(chain))

	chain, err = Chain(Config{Proxies: []string{"http://proxy:8000"}})
	require.NoError(t, err)
	require.Equal(t, Names, names(chain))

	chain, err = Chain(Config{
		Proxies: []string{"http://proxy:8000"},
		Disable: []string{NameHardened, NamePlainHttp},
	})
	require.NoError(t, err)
	require.Equal(t, []string{NameHardenedProxy, NameFetch}, names(chain))

	_, err = Chain(Config{Proxies: []string{"::"}})
	require.Error(t, err)
}

func names(chain []dispatch.Strategy) []string {
	out := make([]string, len(chain))
	for i, s := range chain {
		out[i] = s.Name()
	}
	return out
}

func TestFlattenHeaders(t *testing.T) {
	flat := FlattenHeaders(http.Header{
		"Set-Cookie":   []string{"a=1", "b=2"},
		"Content-Type": []string{"text/html"},
	})
	require.Equal(t, map[string]string{
		"Set-Cookie":   "a=1, b=2",
		"Content-Type": "text/html",
	}, flat)
}
