package cmd

import (
	"os"

	"github.com/mezonai/poldrop/logx"
)

// initializeLogger sends the application log to a rotating file configured
// through LOGFILE, LOGFILE_MAX_SIZE_MB and LOGFILE_MAX_AGE_DAYS.
func initializeLogger(stderr bool) {
	opts := logx.OptionsFromEnv()
	opts.Stderr = stderr
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		// Fall back to the working directory rather than losing the log
		opts.Dir = "."
	}
	logx.Init(opts)
}
