package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// NewProgressBar creates the progress bar used by long-running commands.
func NewProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// Fraction returns a callback that moves bar to a 0..1 fraction of its
// maximum. Regressions are ignored.
func Fraction(bar *progressbar.ProgressBar) func(float64) {
	return func(f float64) {
		limit := bar.GetMax()
		n := int(f * float64(limit))
		if n > limit {
			n = limit
		}
		if n <= int(bar.State().CurrentNum) {
			return
		}
		if err := bar.Set(n); err != nil {
			slog.Debug("Failed to update progress bar", "error", err)
		}
	}
}
