package restyutil

import (
	"fmt"
	"log/slog"
	"strings"
)

// SlogLogger forwards resty's internal log lines to the default slog logger.
type SlogLogger struct {
	Client string
}

func (l SlogLogger) format(format string, v []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}

func (l SlogLogger) Errorf(format string, v ...any) {
	slog.Error(l.format(format, v), "client", l.Client)
}

func (l SlogLogger) Warnf(format string, v ...any) {
	slog.Warn(l.format(format, v), "client", l.Client)
}

func (l SlogLogger) Debugf(format string, v ...any) {
	slog.Debug(l.format(format, v), "client", l.Client)
}
