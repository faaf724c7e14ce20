package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/salesdb/internal/query"
)

// Scenario defines a query scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Dataset is the path to a dataset YAML file.
	// LoadScenario resolves it relative to the scenario file.
	Dataset string `yaml:"dataset"`

	// Assertions are checked against the query report.
	Assertions []Assertion `yaml:"assertions"`

	// Path is the file the scenario was loaded from, if any.
	Path string `yaml:"-"`
}

// Assertion checks one query result. Exactly one of Equals, Absent, IDs or
// Count must be set.
type Assertion struct {
	// Query is the query name, e.g. "total_sales_value".
	Query string `yaml:"query"`

	// Equals is the expected scalar result (string or integer).
	Equals any `yaml:"equals,omitempty"`

	// Absent expects an optional result to be absent (true) or present (false).
	Absent *bool `yaml:"absent,omitempty"`

	// IDs are the expected record ids of a list result, in order.
	IDs []int64 `yaml:"ids,omitempty"`

	// Count is the expected length of a list result.
	Count *int `yaml:"count,omitempty"`
}

// Query result kinds, by what assertions they accept.
const (
	kindScalar   = "scalar"
	kindOptional = "optional"
	kindList     = "list"
)

var queryKinds = map[string]string{
	query.NameGoodsOfLongestNameBuyer:       kindList,
	query.NameMostExpensiveGoodCategory:     kindOptional,
	query.NameMinimumSalesCity:              kindOptional,
	query.NameMostPopularGoodBuyers:         kindList,
	query.NameMinimumNumberOfShopsInCountry: kindScalar,
	query.NameOtherCitySales:                kindList,
	query.NameTotalSalesValue:               kindScalar,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the dataset path BEFORE validation
	if scenario.Dataset != "" && !filepath.IsAbs(scenario.Dataset) {
		scenario.Dataset = filepath.Join(filepath.Dir(path), scenario.Dataset)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	scenario.Path = path
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by file
// name. If filter is non-empty, only scenarios whose name matches the glob
// pattern are returned.
func LoadScenarios(dir, filter string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("list scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if filter != "" {
			ok, err := filepath.Match(filter, s.Name)
			if err != nil {
				return nil, fmt.Errorf("bad filter %q: %w", filter, err)
			}
			if !ok {
				continue
			}
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if _, err := os.Stat(s.Dataset); os.IsNotExist(err) {
		return fmt.Errorf("dataset file not found: %s", s.Dataset)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion checks the query name and that the one check set fits
// the query's result kind.
func validateAssertion(index int, a *Assertion) error {
	if a.Query == "" {
		return fmt.Errorf("assertions[%d]: query is required", index)
	}
	kind, ok := queryKinds[a.Query]
	if !ok {
		return fmt.Errorf("assertions[%d]: unknown query %q", index, a.Query)
	}

	set := 0
	if a.Equals != nil {
		set++
	}
	if a.Absent != nil {
		set++
	}
	if a.IDs != nil {
		set++
	}
	if a.Count != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("assertions[%d]: exactly one of equals, absent, ids, count is required", index)
	}

	switch {
	case a.Equals != nil && kind == kindList:
		return fmt.Errorf("assertions[%d]: equals does not apply to list query %s", index, a.Query)
	case a.Absent != nil && kind != kindOptional:
		return fmt.Errorf("assertions[%d]: absent only applies to optional queries, not %s", index, a.Query)
	case (a.IDs != nil || a.Count != nil) && kind != kindList:
		return fmt.Errorf("assertions[%d]: ids and count only apply to list queries, not %s", index, a.Query)
	case a.Count != nil && *a.Count < 0:
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}

	return nil
}
