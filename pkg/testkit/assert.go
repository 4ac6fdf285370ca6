package testkit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the response code with testify.
func AssertStatusCode(t *testing.T, scenario *Scenario, got int) {
	t.Helper()
	assert.Equal(t, scenario.ExpectedCode, got,
		"[%s] HTTP status code mismatch", scenario.Name)
}

// AssertJSONBody compares expected and actual after decoding both, so key
// order and whitespace never matter. Fields present only in actual are
// ignored, which lets scenarios skip volatile values such as tokens.
func AssertJSONBody(t *testing.T, scenario *Scenario, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var expVal, actVal any
	require.NoError(t, json.Unmarshal(expected, &expVal),
		"[%s] expected response file is not valid JSON", scenario.Name)

	if !assert.NoError(t, json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", scenario.Name, string(actual)) {
		return
	}

	assert.Equal(t, expVal, subset(expVal, actVal),
		"[%s] response body mismatch", scenario.Name)
}

// subset trims actual down to the object keys that appear in expected.
func subset(expected, actual any) any {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return actual
		}
		out := make(map[string]any, len(exp))
		for k, ev := range exp {
			if av, ok := act[k]; ok {
				out[k] = subset(ev, av)
			}
		}
		return out
	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return actual
		}
		out := make([]any, len(act))
		for i := range act {
			out[i] = subset(exp[i], act[i])
		}
		return out
	default:
		return actual
	}
}
