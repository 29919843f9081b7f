package freedvtnc

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger builds the logger shared by every component.  level is one of
// debug, info, warn, error; empty means info.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	var lvl = log.InfoLevel

	if level != "" {
		var err error

		lvl, err = log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	return log.NewWithOptions(w, log.Options{ //nolint:exhaustruct
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	}), nil
}
