package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Run executes a single scenario file against handler.
func Run(t *testing.T, handler http.Handler, scenarioPath string, vars map[string]string) {
	t.Helper()

	s, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}

	t.Run(s.Name, func(t *testing.T) {
		runScenario(t, handler, s, vars)
	})
}

// RunDir runs every scenario in dir as a subtest, in file name order.
func RunDir(t *testing.T, handler http.Handler, dir string, vars map[string]string) {
	t.Helper()

	paths, err := scenarioFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range paths {
		Run(t, handler, path, vars)
	}
}

// ─── Internal execution ───────────────────────────────────────────────────────

func runScenario(t *testing.T, handler http.Handler, s *Scenario, vars map[string]string) {
	t.Helper()

	expand := func(v string) string {
		return os.Expand(v, func(name string) string { return vars[name] })
	}

	var reqBody io.Reader
	if p := s.RequestBodyPath(); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("[%s] read request file %q: %v", s.Name, p, err)
		}
		reqBody = bytes.NewReader([]byte(expand(string(data))))
	}

	req := httptest.NewRequest(strings.ToUpper(s.RequestMethod), expand(s.RequestURL), reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, expand(v))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)

	if p := s.ResponseBodyPath(); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file %q: %v", s.Name, p, err)
			return
		}
		AssertJSONBody(t, s, []byte(expand(string(expected))), rec.Body.Bytes())
	}
}
