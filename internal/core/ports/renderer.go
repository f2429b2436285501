package ports

import (
	"context"
	"time"
)

// Renderer presents build and publish progress.
// It is fed from span lifecycle events so the engine never writes to the terminal directly.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// Stop flushes any buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called once the packages of a run are known.
	// names: packages in processing order
	// deps: package -> workspace dependencies
	OnPlanEmit(names []string, deps map[string][]string)

	// OnStepStart is called when a step (package build, target, publish) begins.
	OnStepStart(spanID, parentID, name string, startTime time.Time)

	// OnStepLog is called when a step emits tool output.
	OnStepLog(spanID string, data []byte)

	// OnStepComplete is called when a step finishes. err is nil on success.
	OnStepComplete(spanID string, endTime time.Time, err error)
}
