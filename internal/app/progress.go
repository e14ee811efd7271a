// ABOUTME: Progress reporting for long library analyses
// ABOUTME: Drives either the bubbletea view or an mpb bar on stderr
package app

import (
	"io"
	"log"
	"path/filepath"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/automashup-go/internal/ui"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// reporter receives progress from a command. step may be called concurrently.
type reporter interface {
	begin(phase ui.Phase, total int)
	step(current string)
	end()
}

// barReporter draws an mpb bar while songs are analysed
type barReporter struct {
	out      io.Writer
	progress *mpb.Progress
	bar      *mpb.Bar
}

func newBarReporter(out io.Writer) *barReporter {
	if out == nil {
		out = io.Discard
	}
	return &barReporter{out: out}
}

func (r *barReporter) begin(phase ui.Phase, total int) {
	log.Printf("%s", phase)
	if phase != ui.PhaseAnalyzing || total == 0 {
		return
	}
	r.progress = mpb.New(mpb.WithOutput(r.out), mpb.WithWidth(64))
	r.bar = r.progress.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Analyzing: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.AverageETA(decor.ET_STYLE_GO),
		),
	)
}

func (r *barReporter) step(string) {
	if r.bar != nil {
		r.bar.Increment()
	}
}

func (r *barReporter) end() {
	if r.progress == nil {
		return
	}
	// Cancellation leaves the bar short
	if !r.bar.Completed() {
		r.bar.Abort(false)
	}
	r.progress.Wait()
	r.progress, r.bar = nil, nil
}

// tuiReporter forwards progress to the ranking view
type tuiReporter struct {
	prog *tea.Program
	done atomic.Int32
}

func (r *tuiReporter) begin(phase ui.Phase, total int) {
	log.Printf("%s", phase)
	r.done.Store(0)
	r.prog.Send(ui.StatusMsg{Phase: &phase, Total: total})
}

func (r *tuiReporter) step(current string) {
	n := r.done.Add(1)
	r.prog.Send(ui.StatusMsg{Done: int(n), Current: filepath.Base(current)})
}

func (r *tuiReporter) end() {}
