// Package testkit runs JSON-described HTTP scenarios against a handler.
//
// Each scenario is a JSON file that describes the request to fire, the
// expected status code and, optionally, the expected JSON body:
//
//	testdata/api/
//	  login_ok.json          ← scenario
//	  login_ok_req.json      ← request body
//	  login_ok_res.json      ← expected response body
//
// Values such as bearer tokens are only known at run time; reference them
// as ${name} in the URL, headers or request body and pass them in vars:
//
//	testkit.RunDir(t, k.Handler(), "testdata/api", map[string]string{"token": token})
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ─── Schema ───────────────────────────────────────────────────────────────────

// Scenario describes a single HTTP test case loaded from a JSON file.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Request
	RequestMethod   string            `json:"requestMethod"`   // defaults to GET
	RequestURL      string            `json:"requestUrl"`      // e.g. /api/menu
	RequestFileName string            `json:"requestFileName"` // request body file, relative to the scenario
	Headers         map[string]string `json:"headers"`

	// Response assertions
	ExpectedCode     int    `json:"expectedCode"`
	ResponseFileName string `json:"responseFileName"` // expected JSON body, relative to the scenario

	dir string
}

// ─── Loading ──────────────────────────────────────────────────────────────────

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	return nil
}

// RequestBodyPath returns the request body file resolved against the
// scenario's directory, or "" when none is set.
func (s *Scenario) RequestBodyPath() string {
	return s.resolve(s.RequestFileName)
}

// ResponseBodyPath returns the expected response file, or "".
func (s *Scenario) ResponseBodyPath() string {
	return s.resolve(s.ResponseFileName)
}

func (s *Scenario) resolve(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// scenarioFiles lists the scenario files in dir, skipping the request and
// response bodies they reference.
func scenarioFiles(dir string) ([]string, error) {
	all, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	referenced := map[string]bool{}
	var candidates []string
	for _, path := range all {
		s, err := LoadScenario(path)
		if err != nil {
			continue
		}
		candidates = append(candidates, path)
		if p := s.RequestBodyPath(); p != "" {
			referenced[p] = true
		}
		if p := s.ResponseBodyPath(); p != "" {
			referenced[p] = true
		}
	}

	var out []string
	for _, path := range candidates {
		if abs, _ := filepath.Abs(path); !referenced[abs] {
			out = append(out, path)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("testkit: no scenario files found in %q", dir)
	}
	return out, nil
}
