package parser

import (
	"testing"

	"github.com/cabewaldrop/pagedb/internal/sql/lexer"
)

func parseOrFatal(t *testing.T, input string) Statement {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", input, err)
	}
	return stmt
}

func TestParseSelectWildcard(t *testing.T) {
	sel, ok := parseOrFatal(t, "SELECT * FROM users").(*SelectStatement)
	if !ok {
		t.Fatalf("expected SelectStatement")
	}
	if !sel.Wildcard {
		t.Error("expected Wildcard")
	}
	if sel.From != "users" || !sel.HasFrom {
		t.Errorf("expected FROM users, got %q (hasFrom=%v)", sel.From, sel.HasFrom)
	}
}

func TestParseSelectItems(t *testing.T) {
	tests := []struct {
		input      string
		expectCols int
		expectFrom string
	}{
		{"SELECT name FROM users", 1, "users"},
		{"SELECT name, age FROM users", 2, "users"},
		{"SELECT id, name, age FROM people", 3, "people"},
	}

	for _, tt := range tests {
		sel, ok := parseOrFatal(t, tt.input).(*SelectStatement)
		if !ok {
			t.Fatalf("Parse(%q) expected SelectStatement", tt.input)
		}
		if sel.Wildcard {
			t.Errorf("Parse(%q) should not be wildcard", tt.input)
		}
		if len(sel.Items) != tt.expectCols {
			t.Errorf("Parse(%q) expected %d items, got %d", tt.input, tt.expectCols, len(sel.Items))
		}
		if sel.From != tt.expectFrom {
			t.Errorf("Parse(%q) expected FROM %q, got %q", tt.input, tt.expectFrom, sel.From)
		}
	}
}

func TestParseSelectNoFrom(t *testing.T) {
	sel, ok := parseOrFatal(t, "SELECT 1 + 1 AS total").(*SelectStatement)
	if !ok {
		t.Fatalf("expected SelectStatement")
	}
	if sel.HasFrom {
		t.Error("expected no FROM clause")
	}
	if len(sel.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(sel.Items))
	}
	if !sel.Items[0].HasAlias || sel.Items[0].Alias != "total" {
		t.Errorf("expected alias total, got %+v", sel.Items[0])
	}
}

func TestParseSelectAlias(t *testing.T) {
	sel, ok := parseOrFatal(t, "SELECT age AS years FROM users").(*SelectStatement)
	if !ok {
		t.Fatalf("expected SelectStatement")
	}
	if !sel.Items[0].HasAlias || sel.Items[0].Alias != "years" {
		t.Errorf("expected alias years, got %+v", sel.Items[0])
	}
}

func TestParseSelectWithWhere(t *testing.T) {
	sel := parseOrFatal(t, "SELECT name FROM users WHERE age > 18").(*SelectStatement)

	binExpr, ok := sel.Where.(*BinaryExpression)
	if !ok {
		t.Fatalf("expected BinaryExpression in WHERE, got %T", sel.Where)
	}
	if binExpr.Operator != OpGreaterThan {
		t.Errorf("expected > operator, got %v", binExpr.Operator)
	}
}

func TestParseSelectWhereIsNull(t *testing.T) {
	sel := parseOrFatal(t, "SELECT name FROM users WHERE name IS NOT NULL").(*SelectStatement)

	isNull, ok := sel.Where.(*IsNullExpression)
	if !ok {
		t.Fatalf("expected IsNullExpression, got %T", sel.Where)
	}
	if !isNull.Negate {
		t.Error("expected IS NOT NULL to negate")
	}
}

func TestParseSelectOrderBy(t *testing.T) {
	sel := parseOrFatal(t, "SELECT * FROM users ORDER BY name DESC, age ASC").(*SelectStatement)

	if len(sel.OrderBy) != 2 {
		t.Fatalf("expected 2 ORDER BY clauses, got %d", len(sel.OrderBy))
	}
	if sel.OrderBy[0].Column != "name" || !sel.OrderBy[0].Descending {
		t.Errorf("first ORDER BY should be name DESC")
	}
	if sel.OrderBy[1].Column != "age" || sel.OrderBy[1].Descending {
		t.Errorf("second ORDER BY should be age ASC")
	}
}

func TestParseInsertSingleRow(t *testing.T) {
	ins := parseOrFatal(t, "INSERT INTO users (name, age) VALUES ('Alice', 30)").(*InsertStatement)

	if ins.Table != "users" {
		t.Errorf("expected table users, got %s", ins.Table)
	}
	if len(ins.Columns) != 2 {
		t.Errorf("expected 2 columns, got %d", len(ins.Columns))
	}
	if len(ins.Rows) != 1 || len(ins.Rows[0]) != 2 {
		t.Fatalf("expected a single 2-value row, got %v", ins.Rows)
	}

	strVal, ok := ins.Rows[0][0].(*StringLiteral)
	if !ok {
		t.Errorf("expected StringLiteral, got %T", ins.Rows[0][0])
	} else if strVal.Value != "Alice" {
		t.Errorf("expected 'Alice', got %q", strVal.Value)
	}

	intVal, ok := ins.Rows[0][1].(*IntegerLiteral)
	if !ok {
		t.Errorf("expected IntegerLiteral, got %T", ins.Rows[0][1])
	} else if intVal.Value != 30 {
		t.Errorf("expected 30, got %d", intVal.Value)
	}
}

func TestParseInsertMultiRow(t *testing.T) {
	ins := parseOrFatal(t, "INSERT INTO users (name) VALUES ('Alice'), ('Bob'), ('Cleo')").(*InsertStatement)

	if len(ins.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(ins.Rows))
	}
	for i, want := range []string{"Alice", "Bob", "Cleo"} {
		got := ins.Rows[i][0].(*StringLiteral).Value
		if got != want {
			t.Errorf("row %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestParseCreateTable(t *testing.T) {
	input := "CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(32) NOT NULL, email VARCHAR(64) UNIQUE)"
	create := parseOrFatal(t, input).(*CreateTableStatement)

	if create.Table != "users" {
		t.Errorf("expected table users, got %s", create.Table)
	}
	if len(create.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(create.Columns))
	}

	if create.Columns[0].Name != "id" {
		t.Errorf("expected column id, got %s", create.Columns[0].Name)
	}
	if create.Columns[0].Type.Kind != TypeInteger {
		t.Errorf("expected INT type, got %v", create.Columns[0].Type)
	}
	if !create.Columns[0].PrimaryKey {
		t.Errorf("expected PRIMARY KEY")
	}

	if !create.Columns[1].NotNull {
		t.Errorf("expected NOT NULL on name")
	}
	if create.Columns[1].Type.Kind != TypeText || !create.Columns[1].Type.HasSize || create.Columns[1].Type.Size != 32 {
		t.Errorf("expected VARCHAR(32), got %v", create.Columns[1].Type)
	}

	if !create.Columns[2].Unique {
		t.Errorf("expected UNIQUE on email")
	}

	if create.PrimaryKey != "id" {
		t.Errorf("expected primary key 'id', got %s", create.PrimaryKey)
	}
}

func TestParseCreateTableDefaultIntWidth(t *testing.T) {
	create := parseOrFatal(t, "CREATE TABLE t (n INT)").(*CreateTableStatement)
	if create.Columns[0].Type.HasSize {
		t.Errorf("expected no explicit size for bare INT, got %v", create.Columns[0].Type)
	}
}

func TestParseCreateDatabase(t *testing.T) {
	for _, input := range []string{"CREATE SCHEMA analytics", "CREATE DATABASE analytics"} {
		stmt, ok := parseOrFatal(t, input).(*CreateDatabaseStatement)
		if !ok {
			t.Fatalf("Parse(%q) expected CreateDatabaseStatement", input)
		}
		if stmt.Name != "analytics" {
			t.Errorf("Parse(%q) expected name analytics, got %s", input, stmt.Name)
		}
	}
}

func TestParseDropDatabase(t *testing.T) {
	for _, input := range []string{"DROP SCHEMA analytics", "DROP DATABASE analytics"} {
		stmt, ok := parseOrFatal(t, input).(*DropDatabaseStatement)
		if !ok {
			t.Fatalf("Parse(%q) expected DropDatabaseStatement", input)
		}
		if stmt.Name != "analytics" {
			t.Errorf("Parse(%q) expected name analytics, got %s", input, stmt.Name)
		}
	}
}

func TestParseUseDatabase(t *testing.T) {
	for _, input := range []string{"USE analytics", "USE DATABASE analytics"} {
		stmt, ok := parseOrFatal(t, input).(*UseDatabaseStatement)
		if !ok {
			t.Fatalf("Parse(%q) expected UseDatabaseStatement", input)
		}
		if stmt.Name != "analytics" {
			t.Errorf("Parse(%q) expected name analytics, got %s", input, stmt.Name)
		}
	}
}

func TestParseShow(t *testing.T) {
	if _, ok := parseOrFatal(t, "SHOW TABLES").(*ShowTablesStatement); !ok {
		t.Error("expected ShowTablesStatement")
	}
	if _, ok := parseOrFatal(t, "SHOW DATABASES").(*ShowDatabasesStatement); !ok {
		t.Error("expected ShowDatabasesStatement")
	}
}

func TestParseUpdate(t *testing.T) {
	upd := parseOrFatal(t, "UPDATE users SET age = 31 WHERE name = 'Alice'").(*UpdateStatement)

	if upd.Table != "users" {
		t.Errorf("expected table users, got %s", upd.Table)
	}
	if len(upd.Assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(upd.Assignments))
	}
	if upd.Assignments[0].Column != "age" {
		t.Errorf("expected column age, got %s", upd.Assignments[0].Column)
	}
	if upd.Where == nil {
		t.Error("expected WHERE clause")
	}
}

func TestParseDelete(t *testing.T) {
	del := parseOrFatal(t, "DELETE FROM users WHERE age < 18").(*DeleteStatement)

	if del.Table != "users" {
		t.Errorf("expected table users, got %s", del.Table)
	}
	if del.Where == nil {
		t.Error("expected WHERE clause")
	}
}

func TestParseDropTable(t *testing.T) {
	drop := parseOrFatal(t, "DROP TABLE users").(*DropTableStatement)

	if drop.Table != "users" {
		t.Errorf("expected table users, got %s", drop.Table)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3)
	sel := parseOrFatal(t, "SELECT * FROM t WHERE x = 1 + 2 * 3").(*SelectStatement)
	binExpr := sel.Where.(*BinaryExpression)

	if binExpr.Operator != OpEquals {
		t.Errorf("expected = at top level, got %v", binExpr.Operator)
	}

	addExpr, ok := binExpr.Right.(*BinaryExpression)
	if !ok {
		t.Fatalf("expected BinaryExpression on right, got %T", binExpr.Right)
	}
	if addExpr.Operator != OpAdd {
		t.Errorf("expected + operator, got %v", addExpr.Operator)
	}

	mulExpr, ok := addExpr.Right.(*BinaryExpression)
	if !ok {
		t.Fatalf("expected BinaryExpression for *, got %T", addExpr.Right)
	}
	if mulExpr.Operator != OpMultiply {
		t.Errorf("expected * operator, got %v", mulExpr.Operator)
	}
}

func TestParseModulo(t *testing.T) {
	sel := parseOrFatal(t, "SELECT * FROM t WHERE x % 2 = 0").(*SelectStatement)
	eq := sel.Where.(*BinaryExpression)
	mod, ok := eq.Left.(*BinaryExpression)
	if !ok || mod.Operator != OpModulo {
		t.Fatalf("expected modulo on the left of =, got %T", eq.Left)
	}
}

func TestParseComplexWhere(t *testing.T) {
	sel := parseOrFatal(t, "SELECT * FROM users WHERE age >= 18 AND (name = 'Alice' OR name = 'Bob')").(*SelectStatement)

	andExpr, ok := sel.Where.(*BinaryExpression)
	if !ok {
		t.Fatalf("expected BinaryExpression, got %T", sel.Where)
	}
	if andExpr.Operator != OpAnd {
		t.Errorf("expected AND at top level, got %v", andExpr.Operator)
	}
}

func TestParseUnaryIdentity(t *testing.T) {
	sel := parseOrFatal(t, "SELECT * FROM t WHERE x = +5").(*SelectStatement)
	eq := sel.Where.(*BinaryExpression)
	un, ok := eq.Right.(*UnaryExpression)
	if !ok || un.Operator != UnaryOpIdentity {
		t.Fatalf("expected unary identity on the right of =, got %T", eq.Right)
	}
}
