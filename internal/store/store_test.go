package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/opql/internal/ir"
	"github.com/roach88/opql/internal/testutil"
)

// createTestStore opens a store in a temp dir with the HR tables applied.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.ApplyCatalog(context.Background(), testutil.Catalog(t)); err != nil {
		t.Fatalf("ApplyCatalog() failed: %v", err)
	}
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
		"foreign_keys": "1",
	} {
		if err := s.verifyPragma(name, want); err != nil {
			t.Error(err)
		}
	}
}

func TestOpen_MemorySkipsWAL(t *testing.T) {
	s, err := Open(Memory)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	for name, want := range map[string]string{
		"journal_mode": "memory",
		"busy_timeout": "5000",
		"foreign_keys": "1",
	} {
		if err := s.verifyPragma(name, want); err != nil {
			t.Error(err)
		}
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{Memory, ":memory:?_busy_timeout=5000&_foreign_keys=on"},
		{"hr.db", "hr.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"},
	}
	for _, tt := range tests {
		if got := dsn(tt.path); got != tt.want {
			t.Errorf("dsn(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestOpenCatalog_SeedsFixtures(t *testing.T) {
	ctx := context.Background()
	s, err := OpenCatalog(ctx, testutil.Catalog(t), Fixtures{
		"Employee":   {{"id": 2, "name": "Bob", "departmentId": 10}, {"id": 1, "name": "Alice"}},
		"Department": {{"id": 10, "name": "Sales"}},
	})
	if err != nil {
		t.Fatalf("OpenCatalog() failed: %v", err)
	}
	defer s.Close()

	ids, err := s.SelectIDs(ctx, "SELECT id FROM employee ORDER BY id ASC")
	if err != nil {
		t.Fatalf("SelectIDs() failed: %v", err)
	}
	if want := []string{"1", "2"}; !equalStrings(ids, want) {
		t.Errorf("SelectIDs() = %v, want %v", ids, want)
	}
}

func TestSeed_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		fixtures Fixtures
		want     string
	}{
		{
			"unknown class",
			Fixtures{"Contractor": {{"id": 1}}},
			`fixtures: unknown class "Contractor"`,
		},
		{
			"bad row reports class and index",
			Fixtures{"Employee": {{"id": 1}, {"id": 2, "age": "old"}}},
			"fixtures: Employee[1]: insert Employee.age: cannot store string (old) as Integer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := OpenCatalog(ctx, testutil.Catalog(t), tt.fixtures)
			if err == nil {
				s.Close()
				t.Fatal("OpenCatalog() succeeded, want error")
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestApplyCatalog_Idempotent(t *testing.T) {
	s := createTestStore(t)

	if err := s.ApplyCatalog(context.Background(), testutil.Catalog(t)); err != nil {
		t.Fatalf("second ApplyCatalog() failed: %v", err)
	}

	for _, table := range []string{"employee", "department", "project"} {
		var count int
		if err := s.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestCreateTableSQL(t *testing.T) {
	got := createTableSQL(testutil.Class(t, "Project"))
	want := "CREATE TABLE IF NOT EXISTS project (id INTEGER PRIMARY KEY, name TEXT, lead_id INTEGER, start_date TEXT, deadline TEXT)"
	if got != want {
		t.Errorf("createTableSQL() =\n  %s\nwant\n  %s", got, want)
	}
}

func TestInsertAndSelectIDs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	employee := testutil.Class(t, "Employee")

	rows := []map[string]any{
		{"id": 3, "name": "Carol", "age": 41, "active": true, "hireDate": "2019-05-01", "lastLogin": "2024-03-01T10:00:00+02:00"},
		{"id": 1, "name": "Alice", "age": 29, "active": false, "grade": "A", "bonus": 10},
		{"id": 2, "name": "Bob", "age": 35},
	}
	for _, row := range rows {
		if err := s.Insert(ctx, employee, row); err != nil {
			t.Fatalf("Insert(%v) failed: %v", row, err)
		}
	}

	ids, err := s.SelectIDs(ctx, "SELECT id FROM employee WHERE age > ? ORDER BY id ASC", 30)
	if err != nil {
		t.Fatalf("SelectIDs() failed: %v", err)
	}
	if want := []string{"2", "3"}; !equalStrings(ids, want) {
		t.Errorf("SelectIDs() = %v, want %v", ids, want)
	}

	var login string
	if err := s.DB().QueryRow("SELECT last_login FROM employee WHERE id = 3").Scan(&login); err != nil {
		t.Fatal(err)
	}
	if login != "2024-03-01T08:00:00.000Z" {
		t.Errorf("last_login = %q, want UTC layout", login)
	}

	ids, err = s.SelectIDs(ctx, "SELECT id FROM employee WHERE age > 100")
	if err != nil {
		t.Fatalf("SelectIDs() failed: %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Errorf("SelectIDs() = %#v, want empty non-nil slice", ids)
	}
}

func TestInsert_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	employee := testutil.Class(t, "Employee")

	tests := []struct {
		name string
		row  map[string]any
	}{
		{"unknown attribute", map[string]any{"id": 1, "nickname": "Al"}},
		{"wrong type", map[string]any{"id": 1, "age": "old"}},
		{"empty row", map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Insert(ctx, employee, tt.row); err == nil {
				t.Error("Insert() succeeded, want error")
			}
		})
	}

	if err := s.Insert(ctx, employee, map[string]any{"id": 1}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if err := s.Insert(ctx, employee, map[string]any{"id": 1}); err == nil {
		t.Error("duplicate primary key accepted")
	}
}

func TestCoerce(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 600000000, time.FixedZone("X", 3600))

	tests := []struct {
		typ     ir.ValueType
		raw     any
		want    any
		wantErr bool
	}{
		{ir.TypeString, "x", "x", false},
		{ir.TypeString, 1, nil, true},
		{ir.TypeCharacter, "é", "é", false},
		{ir.TypeCharacter, "ab", nil, true},
		{ir.TypeBoolean, true, true, false},
		{ir.TypeInteger, 7, int64(7), false},
		{ir.TypeInteger, int64(1) << 40, nil, true},
		{ir.TypeLong, int64(1) << 40, int64(1) << 40, false},
		{ir.TypeDouble, 2, float64(2), false},
		{ir.TypeFloat, 1.5, 1.5, false},
		{ir.TypeInstant, ts, "2024-01-02T02:04:05.600Z", false},
		{ir.TypeAsOf, "9999-12-01T23:59:00Z", "9999-12-01T23:59:00.000Z", false},
		{ir.TypeInstant, "soon", nil, true},
		{ir.TypeLocalDate, "2024-02-29", "2024-02-29", false},
		{ir.TypeLocalDate, "2023-02-29", nil, true},
		{ir.TypeLong, nil, nil, false},
	}
	for _, tt := range tests {
		got, err := Coerce(tt.typ, tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("Coerce(%s, %v) error = %v, wantErr %v", tt.typ, tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Coerce(%s, %v) = %#v, want %#v", tt.typ, tt.raw, got, tt.want)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
