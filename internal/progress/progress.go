// Package progress renders terminal progress feedback for long-running
// pipeline stages. Everything degrades to a no-op when stderr is not a
// terminal, keeping piped output clean.
package progress

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

type Reporter interface {
	Start(total int)
	Increment()
	Finish()
}

type barReporter struct {
	desc string
	bar  *progressbar.ProgressBar
}

// NewReporter returns a bar-backed reporter, or nil when disabled.
// Callers use the nil-safe helpers below rather than checking.
func NewReporter(enabled bool, desc string) Reporter {
	if !enabled {
		return nil
	}
	return &barReporter{desc: desc}
}

func (p *barReporter) Start(total int) {
	if total <= 0 {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(p.desc),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (p *barReporter) Increment() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

func (p *barReporter) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

// Start begins reporting if r is non-nil.
func Start(r Reporter, total int) {
	if r != nil {
		r.Start(total)
	}
}

// Increment advances reporting if r is non-nil.
func Increment(r Reporter) {
	if r != nil {
		r.Increment()
	}
}

// Finish completes reporting if r is non-nil.
func Finish(r Reporter) {
	if r != nil {
		r.Finish()
	}
}

// Enabled reports whether stderr is attached to a terminal.
func Enabled() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// StartSpinner shows an indeterminate spinner until the returned stop
// function is called. Disabled spinners return a no-op stop.
func StartSpinner(enabled bool, desc string) func() {
	if !enabled {
		return func() {}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(9),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWidth(10),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = bar.Add(1)
			case <-done:
				_ = bar.Finish()
				return
			}
		}
	}()
	return func() { close(done) }
}
