package progress

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides feedback during long-running batch work. Increment may
// be called from multiple goroutines at once.
type Reporter interface {
	Start(total int, label string)
	Increment()
	Finish()
}

// NewReporter returns a TerminalReporter for interactive use, a CIReporter
// when the CI environment variable is set, or a QuietReporter when quiet is
// requested.
func NewReporter(quiet bool) Reporter {
	if quiet {
		return QuietReporter{}
	}
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int, label string) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Increment() {
	if r.bar != nil {
		_ = r.bar.Add(1)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	total int
	label string
	done  atomic.Int64
}

func (r *CIReporter) Start(total int, label string) {
	r.total = total
	r.label = label
	fmt.Fprintf(os.Stderr, "%s: %d items\n", label, total)
}

func (r *CIReporter) Increment() {
	done := r.done.Add(1)
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, r.total, r.label)
}

func (r *CIReporter) Finish() {
	fmt.Fprintf(os.Stderr, "%s: done\n", r.label)
}

// QuietReporter discards all progress updates.
type QuietReporter struct{}

func (QuietReporter) Start(int, string) {}
func (QuietReporter) Increment()        {}
func (QuietReporter) Finish()           {}
