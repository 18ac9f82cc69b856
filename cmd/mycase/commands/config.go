package commands

import (
	"mycase-search/internal/mycase"
	"mycase-search/internal/sink"
	"mycase-search/internal/strategies"
	"mycase-search/lib/configutil"
	"mycase-search/lib/restyutil"
	"time"
)

type Config struct {
	// Endpoint overrides the search endpoint.
	Endpoint       string   `json:"endpoint"`
	UserAgent      string   `json:"user_agent"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	MaxRedirects   int      `json:"max_redirects"`
	RetryCount     int      `json:"retry_count"`
	Proxies        []string `json:"proxies"`
	// Disable holds strategy names to leave out of the fallback chain.
	Disable []string `json:"disable"`
	// Sink is left zero in the defaults, sink.Open picks a path per kind.
	Sink sink.Config `json:"sink"`
	// DumpDir receives request/response dumps in verbose mode.
	DumpDir string `json:"dump_dir"`
}

var defaultConfig = Config{
	UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	TimeoutSeconds: int(mycase.DefaultTimeout / time.Second),
	MaxRedirects:   mycase.DefaultMaxRedirects,
	RetryCount:     2,
}

func readConfig(path string) (Config, error) {
	return configutil.ReadConfigOr(path, defaultConfig)
}

func (c Config) requestOptions() mycase.Options {
	return mycase.Options{
		Endpoint:     c.Endpoint,
		UserAgent:    c.UserAgent,
		Timeout:      time.Duration(c.TimeoutSeconds) * time.Second,
		MaxRedirects: c.MaxRedirects,
	}
}

func (c Config) chainConfig(output restyutil.InstrumentOutput) strategies.Config {
	return strategies.Config{
		Proxies:    c.Proxies,
		RetryCount: c.RetryCount,
		Disable:    c.Disable,
		Output:     output,
	}
}
