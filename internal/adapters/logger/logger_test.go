package logger_test

import (
	"bytes"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/adapters/logger"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/zerr"
)

// newTestLogger returns a logger writing uncolored output to a buffer.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_InfoWarn(t *testing.T) {
	tests := []struct {
		name       string
		log        func(*logger.Logger)
		goldenName string
	}{
		{"info", func(l *logger.Logger) { l.Info("staged pkg-a 1.0.1") }, "info_basic"},
		{"info multiline", func(l *logger.Logger) { l.Info("line1\nline2") }, "info_multiline"},
		{"warn", func(l *logger.Logger) { l.Warn("pkg-b has no build manifest") }, "warn_basic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "stdlib error",
			err:        os.ErrPermission,
			goldenName: "error_simple",
		},
		{
			name:       "multiline error",
			err:        errors.New("invalid character '}'\nat offset 12"),
			goldenName: "error_multiline",
		},
		{
			name:       "cycle with context",
			err:        zerr.With(domain.ErrCycleDetected, "cycle", "a -> b -> a"),
			goldenName: "error_cycle",
		},
		{
			name: "build failure",
			err: domain.NewBuildError("pkg-a",
				&domain.BuildTarget{Input: "src", Kind: domain.TargetModule},
				zerr.With(domain.ErrToolFailed, "tool", "babel"),
			),
			goldenName: "error_build",
		},
		{
			name: "metadata only wrapper folds into cause",
			err: zerr.With(
				zerr.Wrap(zerr.With(errors.New("exit status 1"), "channel", "beta"), "publish of pkg-a rejected"),
				"package", "pkg-a",
			),
			goldenName: "error_folded_metadata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestCollectErrorEntries(t *testing.T) {
	err := zerr.With(zerr.Wrap(zerr.With(zerr.New("root"), "a", 1), "outer"), "b", "x")

	entries := logger.CollectErrorEntries(err)
	require.Len(t, entries, 2)
	assert.Equal(t, "outer", entries[0].Message)
	assert.Equal(t, map[string]any{"b": "x"}, entries[0].Metadata)
	assert.Equal(t, "root", entries[1].Message)
	assert.Equal(t, map[string]any{"a": 1}, entries[1].Metadata)

	assert.Empty(t, logger.CollectErrorEntries(nil))
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single entry",
			entries: []logger.ErrorEntry{{Message: "boom"}},
			want:    "Error: boom",
		},
		{
			name:    "cause chain",
			entries: []logger.ErrorEntry{{Message: "outer"}, {Message: "middle"}, {Message: "inner"}},
			want:    "Error: outer\n\n  Caused by:\n    → middle\n    → inner",
		},
		{
			name: "sorted metadata",
			entries: []logger.ErrorEntry{{
				Message:  "conflict",
				Metadata: map[string]any{"staged": "1.1.0", "package": "pkg-a"},
			}},
			want: "Error: conflict\n       package: pkg-a\n       staged: 1.1.0",
		},
		{
			name:    "multiline cause",
			entries: []logger.ErrorEntry{{Message: "main"}, {Message: "l1\nl2"}},
			want:    "Error: main\n\n  Caused by:\n    → l1\n      l2",
		},
		{
			name: "empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}

func TestLogger_Error_LabelsPackage(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(zerr.With(zerr.With(zerr.New("state conflict"), "package", "pkg-a"), "staged", "1.1.0"))

	assert.Equal(t, "✗ [pkg-a] Error: state conflict\n       staged: 1.1.0\n", buf.String())
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.Error(zerr.With(domain.ErrUnknownChannel, "channel", "nightly"))

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"channel":"nightly"`)
	assert.Contains(t, out, "release channel not found")
	assert.NotContains(t, out, "✗")

	buf.Reset()
	lg.SetJSON(false)
	lg.Error(errors.New("back to pretty"))
	assert.Contains(t, buf.String(), "✗ Error: back to pretty")
}

func TestLogger_SetOutput_Nil(t *testing.T) {
	require.NotPanics(t, func() {
		lg := logger.New().(*logger.Logger)
		lg.SetOutput(nil)
	})
}

func TestLogger_ConcurrentAccess(t *testing.T) {
	lg, _ := newTestLogger(t)

	var wg sync.WaitGroup
	for _, fn := range []func(){
		func() { lg.Info("info") },
		func() { lg.Warn("warn") },
		func() { lg.Error(errors.New("error")) },
		func() { lg.SetJSON(true) },
		func() { lg.SetJSON(false) },
		func() { lg.SetOutput(&bytes.Buffer{}) },
	} {
		wg.Go(fn)
	}
	wg.Wait()
}
