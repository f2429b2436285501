// Package telemetry turns engine spans into OpenTelemetry spans and renderer events.
package telemetry

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the default buffer size (4KB) if not specified.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the default flush interval (50ms) if not specified.
	DefaultTimeLimit = 50 * time.Millisecond
)

// ErrBatcherClosed is returned by Write after Close.
var ErrBatcherClosed = errors.New("batch processor is closed")

// BatchProcessor buffers tool output and hands it on in line-aligned chunks.
// A timed flush only emits complete lines; a partial line is held back until
// it is terminated, the size limit is reached or the processor is closed.
// It is safe for concurrent use.
type BatchProcessor struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu     sync.Mutex
	buffer bytes.Buffer
	ticker *time.Ticker
	stopCh chan struct{}
	closed bool
}

// NewBatchProcessor returns a running BatchProcessor. Non-positive limits select the defaults.
// Call Close to stop the background ticker.
func NewBatchProcessor(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *BatchProcessor {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	bp := &BatchProcessor{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
		stopCh:    make(chan struct{}),
	}

	bp.ticker = time.NewTicker(timeLimit)
	go bp.run()

	return bp
}

// Write buffers p. Reaching the size limit flushes everything buffered.
func (bp *BatchProcessor) Write(p []byte) (int, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return 0, ErrBatcherClosed
	}

	n, _ := bp.buffer.Write(p)
	if bp.buffer.Len() >= bp.sizeLimit {
		bp.flushLocked(false)
		bp.ticker.Reset(bp.timeLimit)
	}
	return n, nil
}

// Flush emits every complete buffered line.
func (bp *BatchProcessor) Flush() {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if bp.closed {
		return
	}
	bp.flushLocked(true)
}

// Close stops the ticker and emits whatever is left, partial line included.
func (bp *BatchProcessor) Close() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return nil
	}

	bp.closed = true
	close(bp.stopCh)
	bp.flushLocked(false)
	return nil
}

func (bp *BatchProcessor) run() {
	for {
		select {
		case <-bp.ticker.C:
			bp.Flush()
		case <-bp.stopCh:
			bp.ticker.Stop()
			return
		}
	}
}

// flushLocked must be called with mu held.
func (bp *BatchProcessor) flushLocked(linesOnly bool) {
	n := bp.buffer.Len()
	if linesOnly {
		n = bytes.LastIndexByte(bp.buffer.Bytes(), '\n') + 1
	}
	if n == 0 {
		return
	}

	data := make([]byte, n)
	copy(data, bp.buffer.Next(n))

	// Calling back under the lock keeps chunks ordered.
	if bp.onFlush != nil {
		bp.onFlush(data)
	}
}
