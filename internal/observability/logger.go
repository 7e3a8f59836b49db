package observability

import (
	"log/slog"
	"os"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/state-emissions-map/internal/config"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT. Logs go
// to stderr so stdout stays free for the run report; the shared handler binds
// os.Stdout when it is built, so stdout is pointed at stderr for that call.
func NewLogger(cfg *config.Config) *slog.Logger {
	stdout := os.Stdout
	os.Stdout = os.Stderr
	defer func() { os.Stdout = stdout }()
	return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
}
