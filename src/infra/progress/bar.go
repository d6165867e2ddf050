package progress

import (
	"io"
	"os"
	"time"

	"github.com/contre95/dupetrack/src/music"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Bar renders a terminal progress bar for a scan.
type Bar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// New returns a progress bar on stderr when enabled and stderr is a terminal, and a no-op otherwise.
func New(enabled bool) music.Progress {
	if !enabled || !isTerminal(os.Stderr) {
		return music.NoProgress{}
	}
	return &Bar{w: os.Stderr}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (b *Bar) Start(total int, description string) {
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetItsString("songs"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (b *Bar) Advance() {
	if b.bar != nil {
		_ = b.bar.Add(1)
	}
}

func (b *Bar) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
		b.bar = nil
	}
}
