package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/crate/internal/ui/output"
)

func TestNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.False(t, output.NoColor())

	t.Setenv("NO_COLOR", "1")
	assert.True(t, output.NoColor())
}

func TestColorProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile(), "NO_COLOR should force Ascii profile")

	// The detected profile depends on the environment; only its range is checked.
	t.Setenv("NO_COLOR", "")
	p := output.ColorProfile()
	assert.True(t, p >= termenv.TrueColor && p <= termenv.Ascii, "should return a valid profile")
}

func TestColorProfileANSI(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.Equal(t, termenv.ANSI, output.ColorProfileANSI())

	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfileANSI())
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	out := output.New(&buf)
	assert.NotNil(t, out)

	_, _ = out.WriteString("staged")
	assert.Equal(t, "staged", buf.String())
}

func TestNewWithProfile_NilWriter(t *testing.T) {
	out := output.NewWithProfile(nil, output.ColorProfileANSI)
	assert.NotNil(t, out)
}
