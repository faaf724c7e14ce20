package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/salesdb/internal/model"
	"github.com/roach88/salesdb/internal/query"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Query    string // Query the assertion checked
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Query)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against report and returns one
// message per failure.
func EvaluateAssertions(report *query.Report, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluateAssertion(report, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluateAssertion(report *query.Report, a Assertion) error {
	value, ok := report.Value(a.Query)
	if !ok {
		return fmt.Errorf("unknown query %q", a.Query)
	}

	switch {
	case a.Equals != nil:
		return assertEquals(a.Query, value, a.Equals)
	case a.Absent != nil:
		return assertAbsent(a.Query, value, *a.Absent)
	case a.IDs != nil:
		return assertIDs(a.Query, value, a.IDs)
	case a.Count != nil:
		return assertCount(a.Query, value, *a.Count)
	}
	return fmt.Errorf("assertion on %s has no check", a.Query)
}

func assertEquals(name string, value, expected any) error {
	actual, ok := normalizeScalar(value)
	if !ok {
		return &AssertionError{
			Query:    name,
			Expected: fmt.Sprintf("%v", expected),
			Actual:   "absent",
		}
	}
	want, ok := normalizeScalar(expected)
	if !ok || actual != want {
		return &AssertionError{
			Query:    name,
			Expected: fmt.Sprintf("%v (%T)", expected, expected),
			Actual:   fmt.Sprintf("%v (%T)", actual, actual),
		}
	}
	return nil
}

func assertAbsent(name string, value any, absent bool) error {
	s, _ := value.(*string)
	switch {
	case absent && s != nil:
		return &AssertionError{Query: name, Expected: "absent", Actual: fmt.Sprintf("%q", *s)}
	case !absent && s == nil:
		return &AssertionError{Query: name, Expected: "present", Actual: "absent"}
	}
	return nil
}

func assertIDs(name string, value any, expected []int64) error {
	actual, ok := recordIDs(value)
	if !ok {
		return fmt.Errorf("query %s does not return records", name)
	}
	if !slices.Equal(actual, expected) {
		return &AssertionError{
			Query:    name,
			Expected: fmt.Sprintf("ids %v", expected),
			Actual:   fmt.Sprintf("ids %v", actual),
		}
	}
	return nil
}

func assertCount(name string, value any, expected int) error {
	actual, ok := recordIDs(value)
	if !ok {
		return fmt.Errorf("query %s does not return records", name)
	}
	if len(actual) != expected {
		return &AssertionError{
			Query:    name,
			Expected: fmt.Sprintf("%d records", expected),
			Actual:   fmt.Sprintf("%d records", len(actual)),
		}
	}
	return nil
}

// normalizeScalar maps report values and YAML-decoded values onto string
// or int64 so they compare with ==. A nil *string is not a scalar.
func normalizeScalar(v any) (any, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case *string:
		if x == nil {
			return nil, false
		}
		return *x, true
	case int:
		return int64(x), true
	case int64:
		return x, true
	case uint64:
		return int64(x), true
	}
	return v, true
}

func recordIDs(v any) ([]int64, bool) {
	switch rows := v.(type) {
	case []model.Good:
		return idsOf(rows), true
	case []model.Buyer:
		return idsOf(rows), true
	case []model.Shop:
		return idsOf(rows), true
	case []model.Sale:
		return idsOf(rows), true
	}
	return nil, false
}

func idsOf[T model.Entity](rows []T) []int64 {
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.EntityID()
	}
	return ids
}
