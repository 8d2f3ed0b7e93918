package harness

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/opql/internal/compiler"
	"github.com/roach88/opql/internal/ir"
)

// Snapshot renders the observable outcome of a run as canonical JSON.
//
// Successful runs record the operation, sql, params and (when executed)
// ids. Failed compilations record the error code, message and fragment.
// Float parameters are written as strings since canonical JSON has no
// floats.
func Snapshot(name string, result *Result) ([]byte, error) {
	snapshot := map[string]any{"scenario": name}

	if result.CompileError != nil {
		errMap := map[string]any{
			"code":    compiler.Code(result.CompileError),
			"message": result.CompileError.Error(),
		}
		var ce *compiler.CompileError
		if errors.As(result.CompileError, &ce) && ce.Fragment != "" {
			errMap["fragment"] = ce.Fragment
		}
		snapshot["error"] = errMap
		return ir.MarshalCanonical(snapshot)
	}

	if result.Operation != nil {
		snapshot["operation"] = result.Operation.String()
	}
	snapshot["sql"] = result.SQL

	params := make([]any, len(result.Params))
	for i, p := range result.Params {
		params[i] = canonicalParam(p)
	}
	snapshot["params"] = params

	if result.IDs != nil {
		snapshot["ids"] = result.IDs
	}

	return ir.MarshalCanonical(snapshot)
}

func canonicalParam(p any) any {
	switch v := p.(type) {
	case nil:
		return "NULL"
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case string, bool, int, int32, int64:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the run result so callers can also check expectations.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
