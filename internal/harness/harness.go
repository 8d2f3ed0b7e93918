package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/opql/internal/compiler"
	"github.com/roach88/opql/internal/metadata"
	"github.com/roach88/opql/internal/querysql"
	"github.com/roach88/opql/internal/store"
)

// Run executes a scenario and returns the result.
//
// Run returns an error only when the scenario itself cannot be set up:
// an unreadable or invalid schema, an unrenderable operation, or fixtures
// that do not fit the schema. Failed expectations are reported on the
// Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return RunWithLogger(ctx, scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with the compiler logging to logger.
func RunWithLogger(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	catalog, err := loadCatalog(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	c := compiler.New(catalog, compiler.WithLogger(logger))
	op, err := c.Compile(scenario.Tree)
	if err != nil {
		var ce *compiler.CompileError
		if !errors.As(err, &ce) {
			return nil, fmt.Errorf("compile: %w", err)
		}
		result.CompileError = err
		checkExpectations(scenario, result)
		return result, nil
	}
	result.Operation = op

	query, params, err := querysql.NewSQLCompiler(catalog).Compile(scenario.Tree.Class, op)
	if err != nil {
		return nil, fmt.Errorf("render sql: %w", err)
	}
	result.SQL = query
	result.Params = params

	if scenario.Expect.IDs != nil {
		ids, err := execute(ctx, catalog, scenario.Fixtures, query, params)
		if err != nil {
			return nil, err
		}
		result.IDs = ids
	}

	checkExpectations(scenario, result)
	return result, nil
}

func loadCatalog(scenario *Scenario) (*metadata.Catalog, error) {
	src, filename := []byte(scenario.Schema), "inline.cue"
	if scenario.SchemaFile != "" {
		data, err := os.ReadFile(scenario.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file: %w", err)
		}
		src, filename = data, scenario.SchemaFile
	}
	catalog, err := metadata.ParseSchema(src, filename)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return catalog, nil
}

// execute loads fixtures into a fresh in-memory store and runs query.
func execute(ctx context.Context, catalog *metadata.Catalog, fixtures map[string][]map[string]any, query string, params []any) ([]string, error) {
	s, err := store.OpenCatalog(ctx, catalog, fixtures)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	ids, err := s.SelectIDs(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return ids, nil
}
