package harness

import (
	"fmt"
	"log/slog"

	"github.com/roach88/salesdb/internal/dataset"
	"github.com/roach88/salesdb/internal/query"
	"github.com/roach88/salesdb/internal/store"
	"github.com/roach88/salesdb/internal/testutil"
)

// Harness runs scenarios. Each run gets a fresh store.
type Harness struct {
	logger *slog.Logger
}

// New creates a harness that logs to logger. A nil logger discards output.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = testutil.DiscardLogger()
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a silent harness.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(scenario)
}

// Run executes a scenario and returns the result.
//
// An error means the scenario could not run (bad dataset, missing table);
// failed assertions are reported in the Result instead.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	ds, err := dataset.LoadFile(scenario.Dataset)
	if err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", scenario.Name, err)
	}

	db := store.New(store.WithLogger(h.logger))
	if err := dataset.Load(db, ds); err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", scenario.Name, err)
	}

	report, err := query.Run(db)
	if err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Report = report
	for _, msg := range EvaluateAssertions(report, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"failures", len(result.Errors),
	)
	return result, nil
}
