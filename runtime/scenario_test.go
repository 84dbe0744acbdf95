package runtime

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sergev/codelang/lang"
)

// scenario is one end-to-end program run described in testdata/scenarios.yaml.
type scenario struct {
	Name        string   `yaml:"name"`
	Source      string   `yaml:"source"`
	Stdin       string   `yaml:"stdin"`
	Stdout      string   `yaml:"stdout"`
	Diagnostics []report `yaml:"diagnostics"`
	Fault       *struct {
		Kind string `yaml:"kind"`
		Line int    `yaml:"line"`
	} `yaml:"fault"`
}

func loadScenarios(t *testing.T, path string) []scenario {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var scenarios []scenario
	require.NoError(t, dec.Decode(&scenarios))
	require.NotEmpty(t, scenarios)
	return scenarios
}

func TestScenarios(t *testing.T) {
	for _, sc := range loadScenarios(t, "testdata/scenarios.yaml") {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			ev := NewEvaluator()
			var out bytes.Buffer
			ev.SetOutput(&out)
			ev.SetInput(strings.NewReader(sc.Stdin))
			rec := &recorder{}

			err := Run(ev, sc.Source, rec)

			assert.Equal(t, sc.Stdout, out.String())
			assert.Equal(t, sc.Diagnostics, rec.errors)
			if sc.Fault == nil {
				if len(sc.Diagnostics) == 0 {
					assert.NoError(t, err)
				}
				assert.Empty(t, rec.faults)
				return
			}
			require.Len(t, rec.faults, 1)
			var fault *lang.RuntimeFault
			require.ErrorAs(t, err, &fault)
			assert.Equal(t, lang.FaultKind(sc.Fault.Kind), fault.Kind)
			assert.Equal(t, sc.Fault.Line, fault.Line())
		})
	}
}
