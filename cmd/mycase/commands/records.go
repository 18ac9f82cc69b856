package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mycase-search/internal/sink"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var recordsLimit *int
var recordsOutput *string
var recordsSink *string

func init() {
	recordsLimit = recordsCmd.Flags().IntP("limit", "n", 20, "How many of the latest records to show, 0 shows all.")
	recordsSink = recordsCmd.Flags().String("sink", "", "The sink kind to read: jsonl or sqlite.")
	recordsOutput = recordsCmd.Flags().String("output", "", "The jsonl file, sqlite file or libsql url to read.")
	rootCmd.AddCommand(recordsCmd)
}

func summarize(record sink.Record) string {
	if record.Error != "" {
		return record.Error
	}
	encoded, err := json.Marshal(record.Response)
	if err != nil {
		return err.Error()
	}
	if len(encoded) > 80 {
		return string(encoded[:77]) + "..."
	}
	return string(encoded)
}

func courtItemID(record sink.Record) string {
	value, ok := record.Input["courtItemID"]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

var recordsCmd = &cobra.Command{
	Use:   "records [--limit <n>] [--sink jsonl|sqlite] [--output <path>]",
	Short: "Lists the records stored by previous searches.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig(*configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if cmd.Flags().Changed("sink") {
			cfg.Sink.Kind = *recordsSink
		}
		if cmd.Flags().Changed("output") {
			cfg.Sink.Path = *recordsOutput
		}

		var records []sink.Record
		out, err := sink.OpenReader(cfg.Sink)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Info("no records stored yet", "err", err)
		case err != nil:
			return fmt.Errorf("open sink: %w", err)
		default:
			defer out.Close()
			records, err = out.List(cmd.Context(), *recordsLimit)
			if err != nil {
				return fmt.Errorf("list records: %w", err)
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Timestamp", "Success", "Status", "Court", "Response / Error"})
		for _, r := range records {
			status := ""
			if r.StatusCode != 0 {
				status = strconv.Itoa(r.StatusCode)
			}
			t.AppendRow(table.Row{
				r.Timestamp,
				r.Success,
				status,
				courtItemID(r),
				summarize(r),
			})
		}
		t.AppendFooter(table.Row{"", "", "", "Total", len(records)})
		t.Render()
		return nil
	},
}
