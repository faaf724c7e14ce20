package dataset

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/salesdb/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError describes one problem found in a dataset.
type ValidationError struct {
	Path    string `json:"path"`    // e.g. "sales.3.quantity"
	Message string `json:"message"` // human-readable description
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is every problem found in one dataset.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", errs[0].Error(), len(errs)-1)
}

var (
	// validateMu serialises use of schemaCtx, which is not safe for
	// concurrent use.
	validateMu sync.Mutex
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

// datasetSchema compiles the embedded CUE schema once.
func datasetSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile dataset schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Dataset"))
		if err := schemaDef.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Dataset: %w", err)
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// Validate checks ds against the CUE schema and for duplicate ids within
// each table. References between tables are not checked: a sale may name a
// good, buyer or shop that does not exist.
//
// Returns ValidationErrors listing every problem, or nil.
func Validate(ds *Dataset) error {
	ctx, def, err := datasetSchema()
	if err != nil {
		return err
	}

	var errs ValidationErrors

	validateMu.Lock()
	unified := def.Unify(ctx.Encode(schemaInput(ds)))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		for _, e := range cueerrors.Errors(err) {
			errs = append(errs, ValidationError{
				Path:    errorPath(e.Path()),
				Message: cueMessage(e),
			})
		}
	}
	validateMu.Unlock()

	errs = append(errs, duplicateIDs("goods", ds.Goods)...)
	errs = append(errs, duplicateIDs("buyers", ds.Buyers)...)
	errs = append(errs, duplicateIDs("shops", ds.Shops)...)
	errs = append(errs, duplicateIDs("sales", ds.Sales)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// schemaInput holds only the non-empty tables of ds.
func schemaInput(ds *Dataset) map[string]any {
	in := make(map[string]any, 4)
	if len(ds.Goods) > 0 {
		in["goods"] = ds.Goods
	}
	if len(ds.Buyers) > 0 {
		in["buyers"] = ds.Buyers
	}
	if len(ds.Shops) > 0 {
		in["shops"] = ds.Shops
	}
	if len(ds.Sales) > 0 {
		in["sales"] = ds.Sales
	}
	return in
}

// IsValidationError reports whether err carries dataset validation errors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

func duplicateIDs[T model.Entity](table string, rows []T) []ValidationError {
	var errs []ValidationError
	seen := make(map[int64]int, len(rows))
	for i, row := range rows {
		id := row.EntityID()
		if first, ok := seen[id]; ok {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("%s.%d.id", table, i),
				Message: fmt.Sprintf("duplicate id %d (first at %s.%d)", id, table, first),
			})
			continue
		}
		seen[id] = i
	}
	return errs
}

// errorPath joins a CUE error path with dots, dropping the definition root.
func errorPath(path []string) string {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		if p == "#Dataset" {
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ".")
}

func cueMessage(e cueerrors.Error) string {
	format, args := e.Msg()
	return fmt.Sprintf(format, args...)
}
