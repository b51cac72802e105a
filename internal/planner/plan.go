// Package planner translates a parser AST into a Plan: a tree of typed,
// schema-resolved operations the executor can run without ever looking
// back at parser syntax.
//
// EDUCATIONAL NOTES:
// ------------------
// A query plan can be about *access method selection* (full scan vs.
// B-tree index lookup) — choosing how to run a SELECT rather than
// validating or resolving one. This engine has no secondary index, so
// there is nothing to select between; instead this planner takes on the
// semantic-validation role a naive executor would otherwise do inline
// (column existence, constraint legality, literal range checks) and
// gives it a dedicated stage, the way a real query planner's "bind"
// phase would.
package planner

import (
	"github.com/cabewaldrop/pagedb/internal/schema"
	"github.com/cabewaldrop/pagedb/internal/sql/parser"
	"github.com/cabewaldrop/pagedb/internal/value"
)

// ExprKind identifies which variant of Expression is populated.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprColumn
	ExprBinary
	ExprUnary
	// ExprIsNull and ExprIsNotNull let "x IS [NOT] NULL" nest as a
	// Boolean-valued operand anywhere an expr is accepted (e.g.
	// "x IS NULL AND y"), not just as a top-level WHERE clause.
	ExprIsNull
	ExprIsNotNull
)

// Expression is a resolved, schema-bound expression tree: Column(name) |
// Literal(value) | Binary{left, op, right} | Unary{op, operand}. Column
// carries the resolved index into the table's schema so the executor
// never has to search by name again.
type Expression struct {
	Kind ExprKind

	Literal value.Value

	Column      string
	ColumnIndex int

	Operator parser.BinaryOp
	Left     *Expression
	Right    *Expression

	UnaryOperator parser.UnaryOp
	Operand       *Expression
}

// ConditionKind identifies which variant of Condition is populated.
type ConditionKind int

const (
	// ConditionExpression wraps a Boolean-valued Expression.
	ConditionExpression ConditionKind = iota
	// ConditionIsNull is "expr IS NULL".
	ConditionIsNull
	// ConditionIsNotNull is "expr IS NOT NULL".
	ConditionIsNotNull
	// ConditionConstant is an always-true or always-false condition, used
	// for an absent WHERE clause and for a literal boolean WHERE clause.
	ConditionConstant
)

// Condition is the sum Expression(e) | IsNull(e) | IsNotNull(e) |
// Constant(bool) evaluated by WHERE/ON-style clauses.
type Condition struct {
	Kind     ConditionKind
	Expr     *Expression // populated for Expression/IsNull/IsNotNull
	Constant bool        // populated for ConditionConstant
}

// AlwaysTrue is the Condition used for an absent WHERE clause.
func AlwaysTrue() *Condition { return &Condition{Kind: ConditionConstant, Constant: true} }

// Kind identifies which variant of Plan is populated.
type Kind int

const (
	CreateTable Kind = iota
	DropTable
	CreateDatabase
	DropDatabase
	UseDatabase
	ShowDatabases
	ShowTables
	Insert
	Update
	Delete
	Select
)

// SelectItem is one projected column in a Select plan: the expression to
// evaluate and the header to print it under.
type SelectItem struct {
	Expr   *Expression
	Header string
}

// OrderKey is one ORDER BY clause, resolved to a column index.
type OrderKey struct {
	Column      string
	ColumnIndex int
	Descending  bool
}

// Assignment is one "column = expr" pair in an UPDATE plan.
type Assignment struct {
	Column      string
	ColumnIndex int
	Value       *Expression
}

// Plan is the single tagged-union result of planning: exactly one group
// of fields below is meaningful, selected by Kind. A flat struct, rather
// than one type per kind, keeps every statement's plan representable
// without a type switch at the call site.
type Plan struct {
	Kind Kind

	// CreateTable / DropTable
	TableName string
	Columns   []schema.ColumnDef

	// CreateDatabase / DropDatabase / UseDatabase
	DatabaseName string

	// Insert: one Expression per value, per row, already resolved against
	// the target table's schema. len(InsertRows[i]) == len(Columns of the
	// target table) always: planInsert fills in Null for omitted columns.
	InsertRows [][]*Expression

	// Update
	Assignments []Assignment
	Where       *Condition

	// Delete: TableName, Where

	// Select
	HasTable bool
	Wildcard bool
	Items    []SelectItem
	OrderBy  []OrderKey
}
