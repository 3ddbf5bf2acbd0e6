package wgpu

import (
	"log/slog"

	"github.com/gogpu/flight"
)

// slogger returns the library logger.
func slogger() *slog.Logger {
	return flight.Logger()
}
