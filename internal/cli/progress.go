package cli

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/declscan/declscan/internal/extract"
)

// scanProgress renders a progress bar for a scan run. Quiet mode turns
// it into a no-op.
type scanProgress struct {
	bar *progressbar.ProgressBar
	mu  sync.Mutex
}

func newScanProgress(total int, quiet bool) *scanProgress {
	p := &scanProgress{}
	if quiet || total == 0 {
		return p
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Scanning files"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
	return p
}

// callback adapts the bar to the runner's progress signature.
func (p *scanProgress) callback() extract.Progress {
	if p.bar == nil {
		return nil
	}
	return func(completed, total int, path string) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.bar.Add(1)
	}
}

func (p *scanProgress) finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}

// isTerminal reports whether stderr is attached to a terminal, gating
// the progress bar.
func isTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
