package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/opql/internal/parsetree"
)

// Scenario defines one compilation scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is inline CUE source. Exactly one of Schema and SchemaFile
	// is set.
	Schema string `yaml:"schema,omitempty"`

	// SchemaFile is a path to a CUE schema file, relative to the scenario
	// file when loaded with LoadScenarioWithBasePath.
	SchemaFile string `yaml:"schema_file,omitempty"`

	// Tree is the serialized parse tree to compile.
	Tree parsetree.CompilationUnit `yaml:"tree"`

	// Fixtures maps class names to rows keyed by attribute name.
	Fixtures map[string][]map[string]any `yaml:"fixtures,omitempty"`

	// Expect holds the expectations evaluated after the run.
	Expect Expectation `yaml:"expect"`
}

// Expectation lists what a scenario checks. Unset fields are not checked.
type Expectation struct {
	// Operation is the expected String() rendering of the compiled tree.
	Operation string `yaml:"operation,omitempty"`

	// SQL is the expected rendered query text.
	SQL string `yaml:"sql,omitempty"`

	// IDs are the expected primary keys, in order. An empty list expects
	// no matches; an absent list skips execution.
	IDs []any `yaml:"ids,omitempty"`

	// Error expects compilation to fail.
	Error *ErrorExpectation `yaml:"error,omitempty"`
}

// ErrorExpectation describes an expected compile failure.
type ErrorExpectation struct {
	// Code is the expected error code, e.g. "E201".
	Code string `yaml:"code"`

	// Contains is a substring the error message must contain.
	Contains string `yaml:"contains,omitempty"`

	// Fragment is the expected source fragment of the failure.
	Fragment string `yaml:"fragment,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, "")
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving schema_file relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.SchemaFile != "" && !filepath.IsAbs(scenario.SchemaFile) && basePath != "" {
		scenario.SchemaFile = filepath.Join(basePath, scenario.SchemaFile)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without validating file references.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	switch {
	case s.Schema == "" && s.SchemaFile == "":
		return fmt.Errorf("schema or schema_file is required")
	case s.Schema != "" && s.SchemaFile != "":
		return fmt.Errorf("schema and schema_file are mutually exclusive")
	case s.SchemaFile != "":
		if _, err := os.Stat(s.SchemaFile); os.IsNotExist(err) {
			return fmt.Errorf("schema file not found: %s", s.SchemaFile)
		}
	}

	if s.Tree.Class == "" || s.Tree.Operation == nil {
		return fmt.Errorf("tree with class and operation is required")
	}

	e := s.Expect
	if e.Operation == "" && e.SQL == "" && e.IDs == nil && e.Error == nil {
		return fmt.Errorf("expect must check at least one of operation, sql, ids, error")
	}
	if e.Error != nil {
		if e.Error.Code == "" {
			return fmt.Errorf("expect.error: code is required")
		}
		if e.Operation != "" || e.SQL != "" || e.IDs != nil {
			return fmt.Errorf("expect.error cannot be combined with operation, sql or ids")
		}
	}
	if len(s.Fixtures) > 0 && e.IDs == nil {
		return fmt.Errorf("fixtures require expect.ids")
	}

	return nil
}

// LoadSuite loads every *.yaml scenario in dir, sorted by file name.
// schema_file paths resolve relative to dir.
func LoadSuite(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenarioWithBasePath(path, dir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate scenario name %q (also in %s)", filepath.Base(path), s.Name, prev)
		}
		seen[s.Name] = filepath.Base(path)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
