// Package progress provides terminal feedback for long-running model
// downloads.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback while a model layer downloads.
type Reporter interface {
	Start(total int64, description string)
	Update(completed int64)
	Describe(status string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a byte-count progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int64, description string) {
	r.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(completed int64) {
	if r.bar != nil {
		_ = r.bar.Set64(completed)
	}
}

func (r *TerminalReporter) Describe(status string) {
	if r.bar != nil {
		r.bar.Describe(status)
	} else {
		fmt.Fprintln(os.Stderr, status)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	total int64
}

func (r *CIReporter) Start(total int64, description string) {
	r.total = total
	fmt.Fprintf(os.Stderr, "%s (%d bytes)\n", description, total)
}

func (r *CIReporter) Update(completed int64) {
	if r.total > 0 {
		fmt.Fprintf(os.Stderr, "  %d/%d bytes\n", completed, r.total)
	}
}

func (r *CIReporter) Describe(status string) {
	fmt.Fprintln(os.Stderr, status)
}

func (r *CIReporter) Finish() {}
