package telemetry

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("mycase-search/perf_stats")

var (
	cpuGauge       metric.Float64Gauge
	memoryGauge    metric.Int64Gauge
	goroutineGauge metric.Int64Gauge
)

func init() {
	cpuGauge, _ = meter.Float64Gauge("cpu_usage", metric.WithUnit("%"))
	memoryGauge, _ = meter.Int64Gauge("allocated_mb", metric.WithUnit("MBy"))
	goroutineGauge, _ = meter.Int64Gauge("goroutine_count")
}

// RecordProcessStats records the resource usage of the current process once.
// It is meant to be called at the end of a run.
func RecordProcessStats(ctx context.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	allocatedMb := int64(memStats.Alloc / 1_000_000)
	goroutines := int64(runtime.NumGoroutine())
	memoryGauge.Record(ctx, allocatedMb)
	goroutineGauge.Record(ctx, goroutines)

	var cpuPercent float64
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err == nil {
		cpuPercent, err = proc.CPUPercentWithContext(ctx)
	}
	if err != nil {
		slog.DebugContext(ctx, "failed to read cpu usage", "err", err)
	} else {
		cpuGauge.Record(ctx, cpuPercent)
	}

	slog.DebugContext(
		ctx, "process stats",
		"cpu_percent", cpuPercent,
		"allocated_mb", allocatedMb,
		"goroutines", goroutines,
	)
}
