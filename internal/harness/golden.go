package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/driftware/sessiondoc/internal/docstore"
)

// snapshot converts a result into the canonical map serialized for golden
// comparison. Only the trace is captured; assertion failures fail the test
// directly rather than polluting the golden file.
func snapshot(name string, result *Result) map[string]any {
	trace := make([]any, len(result.Trace))
	for i, entry := range result.Trace {
		trace[i] = entry
	}
	return map[string]any{
		"scenario_name": name,
		"trace":         trace,
	}
}

// RunWithGolden executes a scenario and compares its trace against a
// golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The deterministic clock, id generator, and canonical marshaling make the
// trace byte-identical across runs, so golden files are the source of
// truth for expected behavior.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, msg)
	}

	traceJSON, err := docstore.MarshalFields(snapshot(scenario.Name, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)
	return nil
}
