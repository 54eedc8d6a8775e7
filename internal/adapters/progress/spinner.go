package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// SpinnerSink prints rollout stages and shows a spinner while transactions are pending
type SpinnerSink struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *spinner.Spinner

	stage      string
	stageStart time.Time
}

// NewSpinnerSink creates a sink writing to stdout
func NewSpinnerSink() *SpinnerSink {
	return NewSpinnerSinkTo(os.Stdout)
}

// NewSpinnerSinkTo creates a sink writing to w. The spinner only animates on a terminal.
func NewSpinnerSinkTo(w io.Writer) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.HideCursor = false
	return &SpinnerSink{out: w, spinner: s}
}

// OnProgress handles progress events. Events with a total start a new numbered stage.
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Total > 0 && event.Stage != r.stage {
		r.finishStage()
		r.stage = event.Stage
		r.stageStart = time.Now()
		r.pause(func() {
			fmt.Fprintf(r.out, "%s %s\n",
				color.New(color.FgWhite, color.Faint).Sprintf("[%d/%d]", event.Current, event.Total),
				color.New(color.FgYellow, color.Bold).Sprint(event.Stage))
		})
		return
	}

	if event.Spinner {
		r.spinner.Suffix = " " + event.Message
		if !r.spinner.Active() {
			r.spinner.Start()
		}
	} else if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Info prints an info message
func (r *SpinnerSink) Info(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pause(func() { fmt.Fprintln(r.out, color.New(color.FgCyan).Sprint(message)) })
}

// Error prints an error message
func (r *SpinnerSink) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pause(func() { fmt.Fprintln(r.out, color.New(color.FgRed).Sprint(message)) })
}

// Stop ends the spinner and closes the current stage
func (r *SpinnerSink) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spinner.Stop()
	r.finishStage()
	r.stage = ""
}

func (r *SpinnerSink) finishStage() {
	if r.stage == "" {
		return
	}
	elapsed := time.Since(r.stageStart).Round(time.Millisecond)
	r.pause(func() {
		fmt.Fprintf(r.out, "  %s %s %s\n",
			color.New(color.FgGreen).Sprint("✓"),
			r.stage,
			color.New(color.FgWhite, color.Faint).Sprintf("(%s)", elapsed))
	})
}

// pause stops the spinner around a print and restarts it afterwards
func (r *SpinnerSink) pause(print func()) {
	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	print()
	if wasActive {
		r.spinner.Start()
	}
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)
