// Package linear provides a synchronous, line-buffered renderer for build and publish progress.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/crate/internal/ui/output"
	"go.trai.ch/crate/internal/ui/style"
)

// Renderer implements ports.Renderer with chronological, step-prefixed lines.
// Tool output goes to stdout; step lifecycle goes to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu    sync.Mutex
	steps map[string]*stepState // spanID -> step
}

type stepState struct {
	name      string
	startTime time.Time
	partial   bytes.Buffer
}

// NewRenderer creates a new Renderer. Nil writers default to the process streams.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.NewWithProfile(stderr, output.ColorProfileANSI),
		steps:  make(map[string]*stepState),
	}
}

// Start is a no-op; the renderer is synchronous.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes all partial lines.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, step := range r.steps {
		r.flushLocked(step)
	}
	return nil
}

// Wait is a no-op; the renderer is synchronous.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the packages about to be processed.
func (r *Renderer) OnPlanEmit(names []string, _ map[string][]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "%s %d package(s): %s\n",
		r.output.String(style.Arrow).Faint(), len(names), strings.Join(names, ", "))
}

// OnStepStart prints a step start message.
func (r *Renderer) OnStepStart(spanID, _, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps[spanID] = &stepState{name: name, startTime: startTime}

	prefix := r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", prefix)
}

// OnStepLog prints complete lines with the step prefix and buffers the rest.
func (r *Renderer) OnStepLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	step, ok := r.steps[spanID]
	if !ok {
		return
	}

	step.partial.Write(data)
	for {
		buf := step.partial.Bytes()
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			return
		}
		r.printLineLocked(step.name, buf[:i])
		step.partial.Next(i + 1)
	}
}

// OnStepComplete flushes the step's partial line and prints its outcome.
func (r *Renderer) OnStepComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	step, ok := r.steps[spanID]
	if !ok {
		return
	}
	r.flushLocked(step)
	delete(r.steps, spanID)

	duration := endTime.Sub(step.startTime).Round(time.Millisecond)
	prefix := fmt.Sprintf("[%s]", step.name)

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", prefix, symbol, duration, err)
		return
	}
	symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, symbol, duration)
}

// flushLocked must be called with r.mu held.
func (r *Renderer) flushLocked(step *stepState) {
	if step.partial.Len() > 0 {
		r.printLineLocked(step.name, step.partial.Bytes())
		step.partial.Reset()
	}
}

// printLineLocked must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}
