package planner

import (
	"testing"

	"github.com/cabewaldrop/pagedb/internal/schema"
	"github.com/cabewaldrop/pagedb/internal/sql/lexer"
	"github.com/cabewaldrop/pagedb/internal/sql/parser"
)

func parseOrFatal(t *testing.T, input string) parser.Statement {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", input, err)
	}
	return stmt
}

var peopleColumns = []schema.ColumnDef{
	schema.NewColumnDef("id", schema.Int(0), true, true, true),
	schema.NewColumnDef("name", schema.Varchar(32), true, false, false),
	schema.NewColumnDef("age", schema.Int(0), false, false, false),
}

func TestPlanCreateTable(t *testing.T) {
	stmt := parseOrFatal(t, "CREATE TABLE people (id INT PRIMARY KEY, name VARCHAR(32) NOT NULL, age INT)")
	plan, err := New().Plan(stmt, nil)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.Kind != CreateTable {
		t.Fatalf("expected CreateTable, got %v", plan.Kind)
	}
	if len(plan.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(plan.Columns))
	}
	if plan.Columns[0].Type.Width != 64 {
		t.Errorf("expected default INT width 64, got %d", plan.Columns[0].Type.Width)
	}
	if !plan.Columns[0].IsPrimary || !plan.Columns[0].NotNull || !plan.Columns[0].Unique {
		t.Errorf("expected PRIMARY KEY to imply NOT NULL and UNIQUE, got %+v", plan.Columns[0])
	}
	if plan.Columns[1].Type.MaxLen != 32 {
		t.Errorf("expected VARCHAR(32), got %d", plan.Columns[1].Type.MaxLen)
	}
}

func TestPlanCreateTableRejectsUnsupportedType(t *testing.T) {
	stmt := parseOrFatal(t, "CREATE TABLE t (a BOOLEAN)")
	if _, err := New().Plan(stmt, nil); err == nil {
		t.Fatal("expected an error for an unsupported column type")
	}
}

func TestPlanInsertPositional(t *testing.T) {
	stmt := parseOrFatal(t, "INSERT INTO people VALUES (1, 'Alice', 30)")
	plan, err := New().Plan(stmt, peopleColumns)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.Kind != Insert {
		t.Fatalf("expected Insert, got %v", plan.Kind)
	}
	if len(plan.InsertRows) != 1 || len(plan.InsertRows[0]) != 3 {
		t.Fatalf("expected one row of 3 values, got %+v", plan.InsertRows)
	}
	if plan.InsertRows[0][1].Literal.S != "Alice" {
		t.Errorf("expected Alice in position 1, got %+v", plan.InsertRows[0][1])
	}
}

func TestPlanInsertColumnSubsetFillsNull(t *testing.T) {
	stmt := parseOrFatal(t, "INSERT INTO people (id, name) VALUES (2, 'Bob')")
	plan, err := New().Plan(stmt, peopleColumns)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	row := plan.InsertRows[0]
	if row[2].Kind != ExprLiteral || !row[2].Literal.IsNull() {
		t.Errorf("expected age to default to Null, got %+v", row[2])
	}
}

func TestPlanInsertMissingRequiredColumnIsError(t *testing.T) {
	stmt := parseOrFatal(t, "INSERT INTO people (name) VALUES ('Bob')")
	if _, err := New().Plan(stmt, peopleColumns); err == nil {
		t.Fatal("expected an error: id is NOT NULL and was omitted")
	}
}

func TestPlanInsertArityMismatchIsError(t *testing.T) {
	stmt := parseOrFatal(t, "INSERT INTO people VALUES (1, 'Alice')")
	if _, err := New().Plan(stmt, peopleColumns); err == nil {
		t.Fatal("expected an arity mismatch error")
	}
}

func TestPlanInsertIntegerOutOfRangeIsError(t *testing.T) {
	stmt := parseOrFatal(t, "INSERT INTO people (id, name) VALUES (99999999999, 'Bob')")
	if _, err := New().Plan(stmt, peopleColumns); err == nil {
		t.Fatal("expected an out-of-range integer literal error")
	}
}

func TestPlanSelectWildcardRejectsMixedItems(t *testing.T) {
	sel := &parser.SelectStatement{Wildcard: true, Items: []parser.SelectItem{{Expr: &parser.Identifier{Name: "id"}}}, From: "people", HasFrom: true}
	if _, err := New().Plan(sel, peopleColumns); err == nil {
		t.Fatal("expected an error mixing * with explicit items")
	}
}

func TestPlanSelectNoFromRequiresExplicitItems(t *testing.T) {
	stmt := parseOrFatal(t, "SELECT 1 + 1 AS sum")
	plan, err := New().Plan(stmt, nil)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.HasTable {
		t.Error("expected no table")
	}
	if len(plan.Items) != 1 || plan.Items[0].Header != "sum" {
		t.Errorf("expected one item headered 'sum', got %+v", plan.Items)
	}

	wildcard := &parser.SelectStatement{Wildcard: true}
	if _, err := New().Plan(wildcard, nil); err == nil {
		t.Error("expected an error for SELECT * without a FROM clause")
	}
}

func TestPlanSelectOrderByUnknownColumnIsError(t *testing.T) {
	stmt := parseOrFatal(t, "SELECT id FROM people ORDER BY nope")
	if _, err := New().Plan(stmt, peopleColumns); err == nil {
		t.Fatal("expected an unknown-column error in ORDER BY")
	}
}

func TestPlanSelectHeaderDefaultsToOriginalText(t *testing.T) {
	stmt := parseOrFatal(t, "SELECT age + 1 FROM people")
	plan, err := New().Plan(stmt, peopleColumns)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.Items[0].Header != "(age + 1)" {
		t.Errorf("expected header '(age + 1)', got %q", plan.Items[0].Header)
	}
}

func TestPlanWhereAbsentIsConstantTrue(t *testing.T) {
	stmt := parseOrFatal(t, "SELECT id FROM people")
	plan, err := New().Plan(stmt, peopleColumns)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.Where.Kind != ConditionConstant || !plan.Where.Constant {
		t.Errorf("expected ConditionConstant(true), got %+v", plan.Where)
	}
}

func TestPlanWhereIsNull(t *testing.T) {
	stmt := parseOrFatal(t, "SELECT id FROM people WHERE age IS NULL")
	plan, err := New().Plan(stmt, peopleColumns)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.Where.Kind != ConditionIsNull {
		t.Errorf("expected ConditionIsNull, got %v", plan.Where.Kind)
	}
	if plan.Where.Expr.ColumnIndex != 2 {
		t.Errorf("expected age's index 2, got %d", plan.Where.Expr.ColumnIndex)
	}
}

func TestPlanWhereExpression(t *testing.T) {
	stmt := parseOrFatal(t, "SELECT id FROM people WHERE age >= 18 AND name != 'admin'")
	plan, err := New().Plan(stmt, peopleColumns)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.Where.Kind != ConditionExpression {
		t.Fatalf("expected ConditionExpression, got %v", plan.Where.Kind)
	}
	if plan.Where.Expr.Operator != parser.OpAnd {
		t.Errorf("expected top-level AND, got %v", plan.Where.Expr.Operator)
	}
}

func TestPlanWhereUnknownColumnIsError(t *testing.T) {
	stmt := parseOrFatal(t, "SELECT id FROM people WHERE nope = 1")
	if _, err := New().Plan(stmt, peopleColumns); err == nil {
		t.Fatal("expected an unknown-column error")
	}
}

func TestPlanUpdateCollectsAssignmentsAndWhere(t *testing.T) {
	stmt := parseOrFatal(t, "UPDATE people SET age = 31 WHERE id = 1")
	plan, err := New().Plan(stmt, peopleColumns)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.Kind != Update {
		t.Fatalf("expected Update, got %v", plan.Kind)
	}
	if len(plan.Assignments) != 1 || plan.Assignments[0].ColumnIndex != 2 {
		t.Errorf("expected one assignment to age (index 2), got %+v", plan.Assignments)
	}
}

func TestPlanDelete(t *testing.T) {
	stmt := parseOrFatal(t, "DELETE FROM people WHERE age < 18")
	plan, err := New().Plan(stmt, peopleColumns)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.Kind != Delete {
		t.Fatalf("expected Delete, got %v", plan.Kind)
	}
}

func TestPlanDatabaseStatements(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{"CREATE SCHEMA shop", CreateDatabase},
		{"DROP DATABASE shop", DropDatabase},
		{"USE shop", UseDatabase},
		{"SHOW TABLES", ShowTables},
		{"SHOW DATABASES", ShowDatabases},
	}
	for _, tt := range tests {
		stmt := parseOrFatal(t, tt.input)
		plan, err := New().Plan(stmt, nil)
		if err != nil {
			t.Fatalf("Plan(%q) error: %v", tt.input, err)
		}
		if plan.Kind != tt.kind {
			t.Errorf("Plan(%q) expected kind %v, got %v", tt.input, tt.kind, plan.Kind)
		}
	}
}

func TestPlanModuloExpression(t *testing.T) {
	stmt := parseOrFatal(t, "SELECT id FROM people WHERE age % 2 = 0")
	plan, err := New().Plan(stmt, peopleColumns)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.Where.Expr.Left.Operator != parser.OpModulo {
		t.Errorf("expected a modulo sub-expression, got %+v", plan.Where.Expr.Left)
	}
}
