package harness

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one scenario in a batch.
// Err is set when the scenario could not run at all.
type Outcome struct {
	Scenario *Scenario
	Result   *Result
	Err      error
}

// RunAll executes scenarios with at most parallel running at once and
// returns their outcomes in input order. A parallel value below 1 runs
// them one at a time.
//
// Scenarios share nothing: each one loads its own dataset into its own
// store. A scenario error is recorded in its Outcome and does not stop
// the others; RunAll itself only fails when ctx is cancelled.
func (h *Harness) RunAll(ctx context.Context, scenarios []*Scenario, parallel int) ([]Outcome, error) {
	if parallel < 1 {
		parallel = 1
	}

	outcomes := make([]Outcome, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, s := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := h.Run(s)
			outcomes[i] = Outcome{Scenario: s, Result: result, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	h.logger.Debug("scenario batch finished", "scenarios", len(scenarios), "parallel", parallel)
	return outcomes, nil
}
