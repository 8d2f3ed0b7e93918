// Package harness runs compilation scenarios end to end.
//
// A scenario names a schema, a serialized parse tree and expectations:
//
//	name: active_employees
//	description: status equality compiles to a Compare
//	schema_file: hr.cue
//	tree:
//	  class: Employee
//	  operation:
//	    binary: {attribute: status, operator: eq, literal: "ACTIVE"}
//	fixtures:
//	  Employee:
//	    - {id: 1, status: ACTIVE}
//	    - {id: 2, status: INACTIVE}
//	expect:
//	  operation: Compare(status eq "ACTIVE")
//	  ids: [1]
//
// Run compiles the tree, renders SQL for the compiled operation, and when
// fixtures or ids are given loads the fixtures into a fresh SQLite store
// and executes the SQL. Expectations are then evaluated against the result.
// A scenario may instead expect a compile error by code and message.
//
// RunWithGolden snapshots the compiled operation, SQL, parameters and ids
// (or the error) as canonical JSON under testdata/golden.
package harness
