package reporter

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"qrcast/pkg/types"
)

// ProgressReporter renders receive progress as a progress bar of blocks
type ProgressReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewProgressReporter creates a reporter drawing to out
func NewProgressReporter(out io.Writer) *ProgressReporter {
	return &ProgressReporter{out: out}
}

// initProgressBar creates the bar once the block total is known
func (pr *ProgressReporter) initProgressBar(total int) {
	pr.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Receiving..."),
		progressbar.OptionSetWriter(pr.out),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)
}

// StartUpdatingProgress consumes progress updates until the channel is closed
// or ctx is done, and returns the last update seen.
func (pr *ProgressReporter) StartUpdatingProgress(ctx context.Context, progressCh <-chan types.ProgressUpdate) types.ProgressUpdate {
	var last types.ProgressUpdate
	startTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			log.Println("Progress reporting stopped: user cancelled")
			return last
		case update, ok := <-progressCh:
			if !ok {
				pr.finish(last, time.Since(startTime))
				return last
			}

			if pr.bar == nil || update.Restarted {
				pr.initProgressBar(update.Total)
			}
			_ = pr.bar.Set(update.Received)
			pr.bar.Describe(fmt.Sprintf("Receiving (block %d)", update.Index))
			last = update
		}
	}
}

func (pr *ProgressReporter) finish(last types.ProgressUpdate, elapsed time.Duration) {
	if pr.bar == nil {
		return
	}
	if last.Received == last.Total {
		_ = pr.bar.Finish()
	}

	fmt.Fprintf(pr.out, "\n=========================================================\n")
	fmt.Fprintf(pr.out, "Blocks received: %d/%d\n", last.Received, last.Total)
	fmt.Fprintf(pr.out, "Duration: %.2f seconds\n", elapsed.Seconds())
	fmt.Fprintf(pr.out, "=========================================================\n")
}
