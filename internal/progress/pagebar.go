package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// PageBar tracks how many exports a list command has fetched against its cap.
// Its Update method matches the pager's OnPage callback.
type PageBar struct {
	progress *mpb.Progress
	bar      *mpb.Bar
	out      io.Writer
	mu       sync.Mutex
}

// NewPageBar creates a bar rendering to w. A disabled bar ignores updates and
// Writer returns w unchanged.
func NewPageBar(w io.Writer, enabled bool) *PageBar {
	pb := &PageBar{out: w}
	if !enabled {
		return pb
	}
	if f, ok := w.(*os.File); ok {
		enableANSIOnWindows(f)
	}
	pb.progress = mpb.New(
		mpb.WithOutput(w),
		mpb.WithRefreshRate(150*time.Millisecond),
		mpb.WithWidth(60),
	)
	return pb
}

// Update records the fetched count. The bar is created on the first page, once
// the cap is known.
func (b *PageBar) Update(fetched, limit, total int) {
	if b.progress == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar == nil {
		b.bar = b.progress.New(int64(limit),
			mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
			mpb.PrependDecorators(
				decor.Name("Fetching exports", decor.WCSyncSpaceR),
				decor.CountersNoUnit("%d / %d", decor.WCSyncSpace),
			),
			mpb.AppendDecorators(decor.Percentage(decor.WCSyncSpace)),
			mpb.BarRemoveOnComplete(),
		)
	}
	b.bar.SetCurrent(int64(fetched))
}

// Done removes the bar and waits for the final render. A bar short of its cap is
// aborted: Wait returns only once every bar is done.
func (b *PageBar) Done() {
	if b.progress == nil {
		return
	}
	b.mu.Lock()
	if b.bar != nil && !b.bar.Completed() {
		b.bar.Abort(false)
	}
	b.mu.Unlock()
	b.progress.Wait()
}

// Writer returns a writer that prints above the bar while it is active.
func (b *PageBar) Writer() io.Writer {
	if b.progress != nil {
		return b.progress
	}
	return b.out
}
