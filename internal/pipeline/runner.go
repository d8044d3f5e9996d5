package pipeline

import (
	"io"

	"go.uber.org/zap"
)

// Runner executes analysis runs. Results for the user are printed to out;
// operational events go to the logger.
type Runner struct {
	s   Settings
	log *zap.Logger
	out io.Writer
}

// New returns a Runner. A nil logger is replaced by a no-op logger and a nil
// writer discards console output.
func New(s Settings, log *zap.Logger, out io.Writer) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{s: s, log: log, out: out}
}

// Settings returns the run settings.
func (r *Runner) Settings() Settings { return r.s }
