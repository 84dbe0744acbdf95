package runtime

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergev/codelang/lang"
)

func runWithIO(t *testing.T, src, input string) (string, error) {
	t.Helper()
	ev := NewEvaluator()
	var out bytes.Buffer
	ev.SetOutput(&out)
	ev.SetInput(strings.NewReader(input))
	err := Run(ev, src, nil)
	return out.String(), err
}

func TestPrimClockUsesWallTime(t *testing.T) {
	saved := now
	defer func() { now = saved }()
	now = func() time.Time { return time.UnixMilli(1700000000250) }

	out, err := runWithIO(t, "BEGIN CODE\nDISPLAY: clock()\nEND CODE", "")
	require.NoError(t, err)
	assert.Equal(t, "1.70000000025E9\n", out)

	val, err := primClock(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, lang.TypeFloat, val.Type)
	assert.InDelta(t, 1700000000.25, val.Float(), 1e-6)
}

func TestPrimMath(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"ceil(1.2)", "2"},
		{"floor(-1.2)", "-2"},
		{"sqrt(16.0)", "4"},
		{"abs(-2.5)", "2.5"},
		{"pow(2.0, 10.0)", "1024"},
		{"pow(4.0, 0.5)", "2"},
	}
	for _, tt := range tests {
		out, err := runWithIO(t, "BEGIN CODE\nDISPLAY: "+tt.expr+"\nEND CODE", "")
		require.NoError(t, err, tt.expr)
		assert.Equal(t, tt.want+"\n", out, tt.expr)
	}
}

func TestPrimArgumentFaults(t *testing.T) {
	_, err := runWithIO(t, "BEGIN CODE\n\nDISPLAY: sqrt(16)\nEND CODE", "")
	require.ErrorIs(t, err, lang.TypeMismatch)
	var fault *lang.RuntimeFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, 3, fault.Line())
	assert.Equal(t, "sqrt: expected a FLOAT argument, got INT.", fault.Message)

	_, err = runWithIO(t, "BEGIN CODE\nDISPLAY: pow(2.0)\nEND CODE", "")
	assert.ErrorIs(t, err, lang.ArityMismatch)

	_, err = runWithIO(t, "BEGIN CODE\nDISPLAY: pow(2.0, 1)\nEND CODE", "")
	assert.ErrorIs(t, err, lang.TypeMismatch)
}

func TestPrimScanString(t *testing.T) {
	src := `BEGIN CODE
STRING name = scanString("Name?")
DISPLAY: "Hi " & name
END CODE`
	out, err := runWithIO(t, src, "Ada Lovelace\n")
	require.NoError(t, err)
	assert.Equal(t, "Name?\nHi Ada Lovelace\n", out)

	out, err = runWithIO(t, src, "")
	require.ErrorIs(t, err, lang.InvalidInput)
	assert.Equal(t, "Name?\n", out)
}

func TestNativesAreImmutableGlobals(t *testing.T) {
	_, err := runWithIO(t, "BEGIN CODE\nclock = 1\nEND CODE", "")
	assert.ErrorIs(t, err, lang.ImmutableAssignment)

	out, err := runWithIO(t, "BEGIN CODE\nDISPLAY: clock\nEND CODE", "")
	require.NoError(t, err)
	assert.Equal(t, "<native fn>\n", out)
}
