package pipeline

import (
	"io"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// progress is a reference counter bar; the zero value is a no-op.
type progress struct {
	pbs *mpb.Progress
	bar *mpb.Bar
}

func newProgress(w io.Writer, total int) *progress {
	if w == nil || total == 0 {
		return &progress{}
	}
	pbs := mpb.New(mpb.WithWidth(40), mpb.WithOutput(w))
	bar := pbs.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("processed references: ", decor.WC{W: len("processed references: "), C: decor.DindentRight}),
			decor.Name("", decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
			decor.EwmaETA(decor.ET_STYLE_GO, 10),
			decor.OnComplete(decor.Name(""), ". done"),
		),
	)
	return &progress{pbs: pbs, bar: bar}
}

func (p *progress) done(d time.Duration) {
	if p.bar != nil {
		p.bar.EwmaIncrBy(1, d)
	}
}

func (p *progress) finish(failed bool) {
	if p.pbs == nil {
		return
	}
	if failed {
		p.bar.Abort(false)
	}
	p.pbs.Wait()
}
