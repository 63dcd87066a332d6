package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a sequence of session
// operations followed by assertions over the surviving state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps contains the operations to execute in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one session operation in a scenario.
type Step struct {
	// Op selects the operation: create, append, get, list, delete, events.
	Op string `yaml:"op"`

	App     string `yaml:"app"`
	User    string `yaml:"user"`
	Session string `yaml:"session,omitempty"`

	// State seeds initial state (create only). Keys may carry scope
	// prefixes.
	State map[string]any `yaml:"state,omitempty"`

	// Metadata attaches session metadata (create only).
	Metadata map[string]any `yaml:"metadata,omitempty"`

	// Author, Content, Delta, and Partial describe the event (append
	// only). A null Delta value deletes the key.
	Author  string         `yaml:"author,omitempty"`
	Content map[string]any `yaml:"content,omitempty"`
	Delta   map[string]any `yaml:"delta,omitempty"`
	Partial bool           `yaml:"partial,omitempty"`

	// Last bounds a get to the most recent N events.
	Last int `yaml:"last,omitempty"`

	// PageSize bounds an events listing page.
	PageSize int `yaml:"page_size,omitempty"`

	// Cursor resumes an events listing. "previous" substitutes the cursor
	// returned by the nearest preceding events step.
	Cursor string `yaml:"cursor,omitempty"`

	// ExpectError names the error this step must fail with: not_found,
	// already_exists, invalid_identifier, or invalid_cursor. Empty means
	// the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type: session_state, event_count, or
	// store_len.
	Type string `yaml:"type"`

	App     string `yaml:"app,omitempty"`
	User    string `yaml:"user,omitempty"`
	Session string `yaml:"session,omitempty"`

	// Expect contains expected merged-state values (session_state).
	// Subset match - only specified keys are validated.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Absent lists state keys that must not be present (session_state).
	Absent []string `yaml:"absent,omitempty"`

	// Count is the expected number of events (event_count) or documents
	// (store_len).
	Count int `yaml:"count,omitempty"`
}

// Step op constants.
const (
	OpCreate = "create"
	OpAppend = "append"
	OpGet    = "get"
	OpList   = "list"
	OpDelete = "delete"
	OpEvents = "events"
)

// Assertion type constants.
const (
	AssertSessionState = "session_state"
	AssertEventCount   = "event_count"
	AssertStoreLen     = "store_len"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected, so typos fail loudly instead of silently skipping checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch step.Op {
		case OpCreate, OpAppend, OpGet, OpList, OpDelete, OpEvents:
		default:
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
		if step.App == "" || step.User == "" {
			return fmt.Errorf("step %d: app and user are required", i)
		}
		if step.Op != OpCreate && step.Op != OpList && step.Session == "" {
			return fmt.Errorf("step %d: session is required for %s", i, step.Op)
		}
		switch step.ExpectError {
		case "", errNotFound, errAlreadyExists, errInvalidIdentifier, errInvalidCursor:
		default:
			return fmt.Errorf("step %d: unknown expect_error %q", i, step.ExpectError)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertSessionState, AssertEventCount:
			if a.App == "" || a.User == "" || a.Session == "" {
				return fmt.Errorf("assertion %d: app, user, and session are required", i)
			}
		case AssertStoreLen:
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
	}
	return nil
}
