package strategies

import (
	"log/slog"
	"mycase-search/internal/dispatch"
	"mycase-search/lib/restyutil"
	"slices"
)

const (
	NameHardenedProxy = "hardened+proxy"
	NameHardened      = "hardened"
	NameFetch         = "fetch"
	NamePlainHttp     = "plain-http"
)

// Names lists every strategy in the order they are tried.
var Names = []string{NameHardenedProxy, NameHardened, NameFetch, NamePlainHttp}

type Config struct {
	Proxies    []string
	RetryCount int
	// Disable holds the names of strategies to leave out of the chain.
	Disable []string
	Output  restyutil.InstrumentOutput
}

// Chain builds the fallback chain: the hardened client through a rotating
// proxy, the hardened client directly, a bare client, and finally the bare
// client over plain http. The proxied strategy is left out when no proxies
// are configured.
func Chain(cfg Config) ([]dispatch.Strategy, error) {
	enabled := func(name string) bool {
		return !slices.Contains(cfg.Disable, name)
	}

	var chain []dispatch.Strategy

	if len(cfg.Proxies) == 0 {
		slog.Debug("no proxies configured, skipping strategy", "strategy", NameHardenedProxy)
	} else if enabled(NameHardenedProxy) {
		rotator, err := NewProxyRotator(cfg.Proxies)
		if err != nil {
			return nil, err
		}
		proxied, err := NewHardened(NameHardenedProxy, HardenedOptions{
			Proxy:      rotator,
			RetryCount: cfg.RetryCount,
			Output:     cfg.Output,
		})
		if err != nil {
			return nil, err
		}
		chain = append(chain, proxied)
	}

	if enabled(NameHardened) {
		direct, err := NewHardened(NameHardened, HardenedOptions{
			RetryCount: cfg.RetryCount,
			Output:     cfg.Output,
		})
		if err != nil {
			return nil, err
		}
		chain = append(chain, direct)
	}

	if enabled(NameFetch) {
		chain = append(chain, NewBare(NameFetch))
	}
	if enabled(NamePlainHttp) {
		chain = append(chain, NewDowngrade(NamePlainHttp, NewBare(NamePlainHttp)))
	}

	return chain, nil
}
