package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/xferbench/xferbench/internal/report"
)

// TraceSnapshot captures a run's trace for golden comparison. Snapshots
// contain only deterministic fields (no durations, no ratios), serialized as
// canonical JSON so key order never causes spurious diffs.
type TraceSnapshot struct {
	ScenarioName string
	Check        string // "verify", "handshake", or "fairness"
	Trace        []TraceEvent
}

// toCanonicalMap flattens the snapshot into plain maps for the canonical
// JSON marshaler, dropping zero-valued optional fields.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"type": event.Type,
			"pass": event.Pass,
			"seq":  event.Seq,
		}
		if event.Scenario != "" {
			eventMap["scenario"] = event.Scenario
		}
		if event.Port != 0 {
			eventMap["port"] = event.Port
		}
		if event.Order != "" {
			eventMap["order"] = event.Order
		}
		if event.Repetition != 0 {
			eventMap["repetition"] = event.Repetition
		}
		if event.Bytes != 0 {
			eventMap["bytes"] = event.Bytes
		}
		if event.Detail != "" {
			eventMap["detail"] = event.Detail
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"check":         s.Check,
		"trace":         traceList,
	}
}

// AssertGolden compares a run's trace against the golden file
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name, check string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: name,
		Check:        check,
		Trace:        result.Trace,
	}
	traceJSON, err := report.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)
	return nil
}
