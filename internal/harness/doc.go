// Package harness runs query scenarios against dataset files.
//
// A scenario names a dataset, loads it into a fresh store, evaluates every
// query and checks the results against a list of assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario checks"
//	dataset: ../datasets/retail.yaml
//	assertions:
//	  - query: total_sales_value
//	    equals: 105
//	  - query: minimum_sales_city
//	    absent: true
//	  - query: other_city_sales
//	    ids: [1, 4, 5]
//	  - query: most_popular_good_buyers
//	    count: 2
//
// The dataset path is relative to the scenario file.
//
// # Assertion Kinds
//
// Each assertion names one query and exactly one check:
//
//   - equals: the scalar result (string or integer) equals the value
//   - absent: the optional result (category or city) is absent, or present if false
//   - ids: the list result holds records with exactly these ids, in order
//   - count: the list result has exactly this many records
//
// # Batches
//
// Harness.RunAll runs many scenarios with a bounded number in flight and
// returns outcomes in input order. Scenarios never share a store.
//
// # Golden Reports
//
// RunWithGolden writes the full report as indented JSON and compares it with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
