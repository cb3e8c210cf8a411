// Package progress reports scan stages to the terminal. The reporter is a
// no-op unless stderr is a TTY and quiet mode is off, so JSON output and CI
// logs stay clean.
package progress

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Reporter drives the terminal progress display for one scan.
type Reporter struct {
	enabled bool
	bar     *progressbar.ProgressBar
}

// New creates a reporter. quiet forces it off regardless of the terminal.
func New(quiet bool) *Reporter {
	return &Reporter{
		enabled: !quiet && isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// StartStage begins a counted stage ("parsing", total files).
func (r *Reporter) StartStage(label string, total int) {
	if !r.enabled {
		return
	}
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
	)
}

// Step advances the current stage by one.
func (r *Reporter) Step() {
	if r.bar != nil {
		_ = r.bar.Add(1)
	}
}

// FinishStage clears the current stage's bar.
func (r *Reporter) FinishStage() {
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
}

// Println prints a status line above any active bar.
func (r *Reporter) Println(format string, args ...any) {
	if !r.enabled {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
