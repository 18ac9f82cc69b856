package commands

import (
	"fmt"
	"log/slog"
	"mycase-search/internal/dispatch"
	"mycase-search/internal/search"
	"mycase-search/internal/sink"
	"mycase-search/internal/strategies"
	"mycase-search/lib/configutil"
	"mycase-search/lib/restyutil"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// inputFlags maps flag names to the input object keys they set.
var inputFlags = []struct {
	flag  string
	key   string
	usage string
}{
	{flag: "court-item-id", key: "courtItemID", usage: "The court to search in (required)."},
	{flag: "query-text", key: "queryText", usage: "Free text query."},
	{flag: "page-index", key: "pageIndex", usage: "Result page, starting at 1."},
	{flag: "page-size", key: "pageSize", usage: "Results per page."},
	{flag: "advanced", key: "advanced", usage: "Advanced search, true or false."},
	{flag: "active-flag", key: "activeFlag", usage: "Case status filter, ex. All or Active."},
	{flag: "file-start", key: "fileStart", usage: "Filed on or after this date."},
	{flag: "file-end", key: "fileEnd", usage: "Filed on or before this date."},
}

var timeNow = time.Now

var inputPath *string
var proxies *[]string
var sinkKind *string
var outputPath *string
var dumpDir *string

func init() {
	flags := searchCmd.Flags()
	inputPath = flags.String("input", "input.json5", "The input object, a .local variant is merged over it.")
	for _, f := range inputFlags {
		flags.String(f.flag, "", f.usage)
	}
	proxies = flags.StringArray("proxy", nil, "A proxy url to rotate through, can be repeated.")
	sinkKind = flags.String("sink", "", "Where to store the record: jsonl or sqlite.")
	outputPath = flags.String("output", "", "The jsonl file, sqlite file or libsql url to store the record in.")
	dumpDir = flags.String("dump-dir", "", "Directory for request/response dumps, requires --verbose.")
	rootCmd.AddCommand(searchCmd)
}

// readInput reads the input file and overlays any input flags that were set.
func readInput(path string, flags *pflag.FlagSet) (map[string]any, error) {
	input, err := configutil.ReadConfig[map[string]any](path)
	if os.IsNotExist(err) {
		slog.Debug("no input file", "path", path)
		input = map[string]any{}
	} else if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if input == nil {
		input = map[string]any{}
	}

	for _, f := range inputFlags {
		if !flags.Changed(f.flag) {
			continue
		}
		value, err := flags.GetString(f.flag)
		if err != nil {
			return nil, err
		}
		input[f.key] = value
	}
	return input, nil
}

func applyFlags(cfg *Config, flags *pflag.FlagSet) {
	if flags.Changed("proxy") {
		cfg.Proxies = *proxies
	}
	if flags.Changed("sink") {
		cfg.Sink.Kind = *sinkKind
	}
	if flags.Changed("output") {
		cfg.Sink.Path = *outputPath
	}
	if flags.Changed("dump-dir") {
		cfg.DumpDir = *dumpDir
	}
}

var searchCmd = &cobra.Command{
	Use:   "search [--input <input.json5>] [--court-item-id <id>] [--proxy <url>]... [--sink jsonl|sqlite] [--output <path>]",
	Short: "Runs a single case search and appends the result to the output sink.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// a broken config still leaves flags and defaults to find the sink with
		cfg, configErr := readConfig(*configPath)
		if configErr != nil {
			cfg = defaultConfig
		}
		applyFlags(&cfg, cmd.Flags())

		out, err := sink.Open(cfg.Sink)
		if err != nil {
			return fmt.Errorf("open sink: %w", err)
		}
		defer out.Close()

		fail := func(err error) error {
			pushErr := out.Push(ctx, sink.NewFailure(timeNow(), err))
			if pushErr != nil {
				slog.ErrorContext(ctx, "failed to save failure record", "err", pushErr)
			}
			return err
		}

		if configErr != nil {
			return fail(fmt.Errorf("read config: %w", configErr))
		}

		input, err := readInput(*inputPath, cmd.Flags())
		if err != nil {
			return fail(err)
		}

		var dump restyutil.InstrumentOutput
		if cfg.DumpDir != "" && *verbose {
			fsOutput, err := restyutil.NewFilesystemOutput(cfg.DumpDir)
			if err != nil {
				return fail(fmt.Errorf("create dump dir: %w", err))
			}
			dump = fsOutput
		}

		chain, err := strategies.Chain(cfg.chainConfig(dump))
		if err != nil {
			return fail(fmt.Errorf("build strategies: %w", err))
		}
		dispatcher := dispatch.New(chain...)
		slog.DebugContext(ctx, "strategy chain", "strategies", dispatcher.Strategies())

		return search.Run(ctx, search.Params{
			Input:      input,
			Options:    cfg.requestOptions(),
			Dispatcher: dispatcher,
			Sink:       out,
			Now:        timeNow,
		})
	},
}
