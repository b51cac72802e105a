package planner

import (
	"math"

	"github.com/cabewaldrop/pagedb/internal/dberr"
	"github.com/cabewaldrop/pagedb/internal/schema"
	"github.com/cabewaldrop/pagedb/internal/sql/parser"
	"github.com/cabewaldrop/pagedb/internal/value"
)

// Planner turns a parser.Statement into a Plan. It carries no state of its
// own: every method call is an independent, stateless transform over one
// statement at a time.
type Planner struct{}

// New returns a ready-to-use Planner.
func New() *Planner { return &Planner{} }

// Plan dispatches on the concrete statement type. columns is the target
// table's schema for statements that reference one (INSERT/UPDATE/DELETE,
// and a SELECT with a FROM clause); pass nil for DDL and database-level
// statements, and for a FROM-less SELECT.
func (p *Planner) Plan(stmt parser.Statement, columns []schema.ColumnDef) (*Plan, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStatement:
		return p.planCreateTable(s)
	case *parser.DropTableStatement:
		return &Plan{Kind: DropTable, TableName: s.Table}, nil
	case *parser.CreateDatabaseStatement:
		return &Plan{Kind: CreateDatabase, DatabaseName: s.Name}, nil
	case *parser.DropDatabaseStatement:
		return &Plan{Kind: DropDatabase, DatabaseName: s.Name}, nil
	case *parser.UseDatabaseStatement:
		return &Plan{Kind: UseDatabase, DatabaseName: s.Name}, nil
	case *parser.ShowDatabasesStatement:
		return &Plan{Kind: ShowDatabases}, nil
	case *parser.ShowTablesStatement:
		return &Plan{Kind: ShowTables}, nil
	case *parser.InsertStatement:
		return p.planInsert(s, columns)
	case *parser.UpdateStatement:
		return p.planUpdate(s, columns)
	case *parser.DeleteStatement:
		return p.planDelete(s, columns)
	case *parser.SelectStatement:
		return p.planSelect(s, columns)
	default:
		return nil, dberr.Planner("unsupported statement type %T", stmt)
	}
}

func (p *Planner) planCreateTable(s *parser.CreateTableStatement) (*Plan, error) {
	cols := make([]schema.ColumnDef, 0, len(s.Columns))
	for _, c := range s.Columns {
		typ, err := planDataType(c.Type)
		if err != nil {
			return nil, err
		}
		cols = append(cols, schema.NewColumnDef(c.Name, typ, c.NotNull, c.Unique, c.PrimaryKey))
	}
	return &Plan{Kind: CreateTable, TableName: s.Table, Columns: cols}, nil
}

// planDataType converts the parser's surface-level DataType (which still
// distinguishes REAL and BOOLEAN, tokens the lexer recognizes elsewhere in
// the grammar) into the storage layer's DataType. The grammar fragment for
// col_def only allows INT/INTEGER/VARCHAR, so any other kind reaching here
// is a planner error rather than a parser one.
func planDataType(t parser.DataType) (schema.DataType, error) {
	size := 0
	if t.HasSize {
		size = t.Size
	}
	switch t.Kind {
	case parser.TypeInteger:
		return schema.Int(size), nil
	case parser.TypeText:
		return schema.Varchar(size), nil
	default:
		return schema.DataType{}, dberr.Planner("unsupported column type %s", t)
	}
}

func (p *Planner) planInsert(s *parser.InsertStatement, columns []schema.ColumnDef) (*Plan, error) {
	if len(columns) == 0 {
		return nil, dberr.Planner("no column schema available for table %q", s.Table)
	}

	explicit := len(s.Columns) > 0
	var indexFor []int // indexFor[i] is the schema index that VALUES position i maps to
	if explicit {
		indexFor = make([]int, len(s.Columns))
		provided := make(map[int]struct{}, len(s.Columns))
		for i, name := range s.Columns {
			idx, ok := schema.FindColumn(columns, name)
			if !ok {
				return nil, dberr.Planner("unknown column %q", name)
			}
			indexFor[i] = idx
			provided[idx] = struct{}{}
		}
		for i, col := range columns {
			if _, ok := provided[i]; !ok && col.NotNull {
				return nil, dberr.Planner("column %q is NOT NULL and was not given a value", col.Name)
			}
		}
	}

	rows := make([][]*Expression, 0, len(s.Rows))
	for _, row := range s.Rows {
		if explicit {
			if len(row) != len(s.Columns) {
				return nil, dberr.Planner("table %q has %d named columns, got %d values", s.Table, len(s.Columns), len(row))
			}
		} else if len(row) != len(columns) {
			return nil, dberr.Planner("table %q has %d columns, got %d values", s.Table, len(columns), len(row))
		}

		full := make([]*Expression, len(columns))
		for i := range full {
			full[i] = &Expression{Kind: ExprLiteral, Literal: value.Null()}
		}
		for i, vexpr := range row {
			expr, err := convertExpr(vexpr, columns)
			if err != nil {
				return nil, err
			}
			target := i
			if explicit {
				target = indexFor[i]
			}
			full[target] = expr
		}
		rows = append(rows, full)
	}

	return &Plan{Kind: Insert, TableName: s.Table, InsertRows: rows}, nil
}

func (p *Planner) planUpdate(s *parser.UpdateStatement, columns []schema.ColumnDef) (*Plan, error) {
	if len(columns) == 0 {
		return nil, dberr.Planner("no column schema available for table %q", s.Table)
	}
	assignments := make([]Assignment, 0, len(s.Assignments))
	for _, a := range s.Assignments {
		idx, ok := schema.FindColumn(columns, a.Column)
		if !ok {
			return nil, dberr.Planner("unknown column %q", a.Column)
		}
		expr, err := convertExpr(a.Value, columns)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, Assignment{Column: a.Column, ColumnIndex: idx, Value: expr})
	}
	where, err := buildCondition(s.Where, columns)
	if err != nil {
		return nil, err
	}
	return &Plan{Kind: Update, TableName: s.Table, Assignments: assignments, Where: where}, nil
}

func (p *Planner) planDelete(s *parser.DeleteStatement, columns []schema.ColumnDef) (*Plan, error) {
	if len(columns) == 0 {
		return nil, dberr.Planner("no column schema available for table %q", s.Table)
	}
	where, err := buildCondition(s.Where, columns)
	if err != nil {
		return nil, err
	}
	return &Plan{Kind: Delete, TableName: s.Table, Where: where}, nil
}

func (p *Planner) planSelect(s *parser.SelectStatement, columns []schema.ColumnDef) (*Plan, error) {
	if s.Wildcard && len(s.Items) > 0 {
		return nil, dberr.Planner("SELECT * may not be mixed with explicit select items")
	}
	if !s.HasFrom && s.Wildcard {
		return nil, dberr.Planner("SELECT * requires a FROM clause")
	}

	items := make([]SelectItem, 0, len(s.Items))
	for _, it := range s.Items {
		expr, err := convertExpr(it.Expr, columns)
		if err != nil {
			return nil, err
		}
		header := it.OriginalText
		if it.HasAlias {
			header = it.Alias
		}
		items = append(items, SelectItem{Expr: expr, Header: header})
	}

	orderBy := make([]OrderKey, 0, len(s.OrderBy))
	for _, ob := range s.OrderBy {
		idx, ok := schema.FindColumn(columns, ob.Column)
		if !ok {
			return nil, dberr.Planner("unknown column %q in ORDER BY", ob.Column)
		}
		orderBy = append(orderBy, OrderKey{Column: ob.Column, ColumnIndex: idx, Descending: ob.Descending})
	}

	where, err := buildCondition(s.Where, columns)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Kind:      Select,
		HasTable:  s.HasFrom,
		TableName: s.From,
		Wildcard:  s.Wildcard,
		Items:     items,
		Where:     where,
		OrderBy:   orderBy,
	}, nil
}

// buildCondition converts a (possibly nil) WHERE expression into a
// Condition, implementing all four Condition variants: a nil expression
// (absent WHERE) is ConditionConstant(true); a literal boolean WHERE
// clause is ConditionConstant(its value); "expr IS [NOT] NULL" becomes
// ConditionIsNull/ConditionIsNotNull; anything else is ConditionExpression.
func buildCondition(expr parser.Expression, columns []schema.ColumnDef) (*Condition, error) {
	if expr == nil {
		return AlwaysTrue(), nil
	}
	switch e := expr.(type) {
	case *parser.BooleanLiteral:
		return &Condition{Kind: ConditionConstant, Constant: e.Value}, nil
	case *parser.IsNullExpression:
		operand, err := convertExpr(e.Operand, columns)
		if err != nil {
			return nil, err
		}
		kind := ConditionIsNull
		if e.Negate {
			kind = ConditionIsNotNull
		}
		return &Condition{Kind: kind, Expr: operand}, nil
	default:
		resolved, err := convertExpr(expr, columns)
		if err != nil {
			return nil, err
		}
		return &Condition{Kind: ConditionExpression, Expr: resolved}, nil
	}
}

// convertExpr resolves a parser expression tree against columns, the
// target table's schema (nil/empty for a FROM-less SELECT, in which case
// any column reference is necessarily unresolvable).
func convertExpr(expr parser.Expression, columns []schema.ColumnDef) (*Expression, error) {
	switch e := expr.(type) {
	case *parser.IntegerLiteral:
		if e.Value < math.MinInt32 || e.Value > math.MaxInt32 {
			return nil, dberr.Planner("integer literal %d is outside 32-bit signed range", e.Value)
		}
		return &Expression{Kind: ExprLiteral, Literal: value.Int(int32(e.Value))}, nil
	case *parser.RealLiteral:
		return &Expression{Kind: ExprLiteral, Literal: value.Float(e.Value)}, nil
	case *parser.StringLiteral:
		return &Expression{Kind: ExprLiteral, Literal: value.Str(e.Value)}, nil
	case *parser.BooleanLiteral:
		return &Expression{Kind: ExprLiteral, Literal: value.Bool(e.Value)}, nil
	case *parser.NullLiteral:
		return &Expression{Kind: ExprLiteral, Literal: value.Null()}, nil
	case *parser.Identifier:
		idx, ok := schema.FindColumn(columns, e.Name)
		if !ok {
			return nil, dberr.Planner("unknown column %q", e.Name)
		}
		return &Expression{Kind: ExprColumn, Column: e.Name, ColumnIndex: idx}, nil
	case *parser.BinaryExpression:
		left, err := convertExpr(e.Left, columns)
		if err != nil {
			return nil, err
		}
		right, err := convertExpr(e.Right, columns)
		if err != nil {
			return nil, err
		}
		return &Expression{Kind: ExprBinary, Operator: e.Operator, Left: left, Right: right}, nil
	case *parser.UnaryExpression:
		operand, err := convertExpr(e.Operand, columns)
		if err != nil {
			return nil, err
		}
		return &Expression{Kind: ExprUnary, UnaryOperator: e.Operator, Operand: operand}, nil
	case *parser.IsNullExpression:
		// "x IS NULL" composes as a Boolean-valued operand anywhere an expr
		// is accepted (e.g. "x IS NULL AND y"), not just as a top-level
		// WHERE clause.
		operand, err := convertExpr(e.Operand, columns)
		if err != nil {
			return nil, err
		}
		kind := ExprIsNull
		if e.Negate {
			kind = ExprIsNotNull
		}
		return &Expression{Kind: kind, Operand: operand}, nil
	default:
		return nil, dberr.Planner("unsupported expression type %T", expr)
	}
}
