package strategies

import (
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
)

// ProxyRotator hands out its proxies round-robin, one per outgoing request.
type ProxyRotator struct {
	proxies []*url.URL
	next    atomic.Uint64
}

func NewProxyRotator(rawUrls []string) (*ProxyRotator, error) {
	if len(rawUrls) == 0 {
		return nil, fmt.Errorf("no proxy urls given")
	}
	proxies := make([]*url.URL, len(rawUrls))
	for i, raw := range rawUrls {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url %d: %w", i, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("proxy url %d must have a scheme and host", i)
		}
		proxies[i] = u
	}
	return &ProxyRotator{proxies: proxies}, nil
}

// Proxy implements http.Transport.Proxy.
func (r *ProxyRotator) Proxy(*http.Request) (*url.URL, error) {
	n := r.next.Add(1) - 1
	return r.proxies[n%uint64(len(r.proxies))], nil
}

func (r *ProxyRotator) Len() int {
	return len(r.proxies)
}
