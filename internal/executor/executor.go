// Package executor runs a planner.Plan against the storage engine and
// produces a Result.
//
// EDUCATIONAL NOTES:
// ------------------
// Resolving AST directly to rows in one pass, choosing access methods
// inline, is one way to build an executor; this one splits that in two
// instead. The planner package binds names and validates shape, and
// this package is left with a much smaller job — walk rows, evaluate
// already-resolved expressions, sort, project. There is no access-method
// choice to make since there is no secondary index; every SELECT is a
// full scan.
package executor

import (
	"fmt"
	"sort"

	"github.com/cabewaldrop/pagedb/internal/dberr"
	"github.com/cabewaldrop/pagedb/internal/dbms"
	"github.com/cabewaldrop/pagedb/internal/planner"
	"github.com/cabewaldrop/pagedb/internal/schema"
	"github.com/cabewaldrop/pagedb/internal/sql/parser"
	"github.com/cabewaldrop/pagedb/internal/storage"
	"github.com/cabewaldrop/pagedb/internal/value"
)

// Executor ties the planner to a running StorageEngine.
type Executor struct {
	engine  *dbms.StorageEngine
	planner *planner.Planner
}

// New builds an Executor over an already-open StorageEngine.
func New(engine *dbms.StorageEngine) *Executor {
	return &Executor{engine: engine, planner: planner.New()}
}

// Execute plans and runs one parsed statement.
func (e *Executor) Execute(stmt parser.Statement) (*Result, error) {
	columns, err := e.columnsFor(stmt)
	if err != nil {
		return nil, err
	}

	plan, err := e.planner.Plan(stmt, columns)
	if err != nil {
		return nil, err
	}

	switch plan.Kind {
	case planner.CreateTable:
		return e.execCreateTable(plan)
	case planner.DropTable:
		return e.execDropTable(plan)
	case planner.CreateDatabase:
		return e.execCreateDatabase(plan)
	case planner.DropDatabase:
		return e.execDropDatabase(plan)
	case planner.UseDatabase:
		return e.execUseDatabase(plan)
	case planner.ShowDatabases:
		return e.execShowDatabases()
	case planner.ShowTables:
		return e.execShowTables()
	case planner.Insert:
		return e.execInsert(plan)
	case planner.Update:
		return e.execUpdate(plan)
	case planner.Delete:
		return e.execDelete(plan)
	case planner.Select:
		return e.execSelect(plan)
	default:
		return nil, dberr.Execution("unsupported plan kind %v", plan.Kind)
	}
}

// columnsFor resolves the schema the planner needs to bind names against,
// for whichever statement kind references a single table. Statements that
// don't reference a table (DDL, database-level, FROM-less SELECT) get
// nil, matching what Planner.Plan expects in that case.
func (e *Executor) columnsFor(stmt parser.Statement) ([]schema.ColumnDef, error) {
	var tableName string
	switch s := stmt.(type) {
	case *parser.InsertStatement:
		tableName = s.Table
	case *parser.UpdateStatement:
		tableName = s.Table
	case *parser.DeleteStatement:
		tableName = s.Table
	case *parser.SelectStatement:
		if !s.HasFrom {
			return nil, nil
		}
		tableName = s.From
	default:
		return nil, nil
	}

	db, err := e.engine.CurrentDatabase()
	if err != nil {
		return nil, err
	}
	tbl, err := db.GetTable(tableName)
	if err != nil {
		return nil, err
	}
	return tbl.Columns(), nil
}

func (e *Executor) execCreateTable(plan *planner.Plan) (*Result, error) {
	db, err := e.engine.CurrentDatabase()
	if err != nil {
		return nil, err
	}
	if err := db.CreateTable(plan.TableName, plan.Columns); err != nil {
		return nil, err
	}
	return message("table %s created", plan.TableName), nil
}

func (e *Executor) execDropTable(plan *planner.Plan) (*Result, error) {
	db, err := e.engine.CurrentDatabase()
	if err != nil {
		return nil, err
	}
	if err := db.DropTable(plan.TableName); err != nil {
		return nil, err
	}
	return message("table %s dropped", plan.TableName), nil
}

func (e *Executor) execCreateDatabase(plan *planner.Plan) (*Result, error) {
	if err := e.engine.CreateDatabase(plan.DatabaseName); err != nil {
		return nil, err
	}
	return message("database %s created", plan.DatabaseName), nil
}

func (e *Executor) execDropDatabase(plan *planner.Plan) (*Result, error) {
	if err := e.engine.DropDatabase(plan.DatabaseName); err != nil {
		return nil, err
	}
	return message("database %s dropped", plan.DatabaseName), nil
}

func (e *Executor) execUseDatabase(plan *planner.Plan) (*Result, error) {
	if err := e.engine.UseDatabase(plan.DatabaseName); err != nil {
		return nil, err
	}
	return message("using database %s", plan.DatabaseName), nil
}

func (e *Executor) execShowDatabases() (*Result, error) {
	names := e.engine.ListDatabases()
	rows := make([][]value.Value, len(names))
	for i, n := range names {
		rows[i] = []value.Value{value.Str(n)}
	}
	return &Result{Columns: []string{"database"}, Rows: rows, RowCount: len(rows)}, nil
}

func (e *Executor) execShowTables() (*Result, error) {
	db, err := e.engine.CurrentDatabase()
	if err != nil {
		return nil, err
	}
	names := db.ListTables()
	rows := make([][]value.Value, len(names))
	for i, n := range names {
		rows[i] = []value.Value{value.Str(n)}
	}
	return &Result{Columns: []string{"table"}, Rows: rows, RowCount: len(rows)}, nil
}

func (e *Executor) execInsert(plan *planner.Plan) (*Result, error) {
	db, err := e.engine.CurrentDatabase()
	if err != nil {
		return nil, err
	}
	for _, row := range plan.InsertRows {
		values := make([]value.Value, len(row))
		for i, expr := range row {
			v, err := evaluateExpression(expr, nil)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		if _, err := db.InsertRecord(plan.TableName, values); err != nil {
			return nil, err
		}
	}
	return &Result{Message: fmt.Sprintf("inserted %d row(s)", len(plan.InsertRows)), RowCount: len(plan.InsertRows)}, nil
}

func (e *Executor) execUpdate(plan *planner.Plan) (*Result, error) {
	db, err := e.engine.CurrentDatabase()
	if err != nil {
		return nil, err
	}

	type matched struct {
		id  storage.RecordId
		row []value.Value
	}
	var targets []matched
	err = db.ScanTable(plan.TableName, func(id storage.RecordId, row []value.Value) error {
		if matches(plan.Where, row) {
			targets = append(targets, matched{id: id, row: append([]value.Value(nil), row...)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, t := range targets {
		newValues := append([]value.Value(nil), t.row...)
		for _, a := range plan.Assignments {
			v, err := evaluateExpression(a.Value, t.row)
			if err != nil {
				return nil, err
			}
			newValues[a.ColumnIndex] = v
		}
		if _, err := db.UpdateRecord(plan.TableName, t.id, newValues); err != nil {
			return nil, err
		}
	}

	return &Result{Message: fmt.Sprintf("updated %d row(s)", len(targets)), RowCount: len(targets)}, nil
}

func (e *Executor) execDelete(plan *planner.Plan) (*Result, error) {
	db, err := e.engine.CurrentDatabase()
	if err != nil {
		return nil, err
	}

	var ids []storage.RecordId
	err = db.ScanTable(plan.TableName, func(id storage.RecordId, row []value.Value) error {
		if matches(plan.Where, row) {
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if err := db.DeleteRecord(plan.TableName, id); err != nil {
			return nil, err
		}
	}

	return &Result{Message: fmt.Sprintf("deleted %d row(s)", len(ids)), RowCount: len(ids)}, nil
}

func (e *Executor) execSelect(plan *planner.Plan) (*Result, error) {
	if !plan.HasTable {
		return e.execSelectNoFrom(plan)
	}

	db, err := e.engine.CurrentDatabase()
	if err != nil {
		return nil, err
	}
	tbl, err := db.GetTable(plan.TableName)
	if err != nil {
		return nil, err
	}

	var rows [][]value.Value
	err = db.ScanTable(plan.TableName, func(_ storage.RecordId, row []value.Value) error {
		if matches(plan.Where, row) {
			rows = append(rows, append([]value.Value(nil), row...))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(plan.OrderBy) > 0 {
		sortRows(rows, plan.OrderBy)
	}

	if plan.Wildcard {
		headers := make([]string, len(tbl.Columns()))
		for i, c := range tbl.Columns() {
			headers[i] = c.Name
		}
		return &Result{Columns: headers, Rows: rows, RowCount: len(rows)}, nil
	}

	return project(plan.Items, rows)
}

func (e *Executor) execSelectNoFrom(plan *planner.Plan) (*Result, error) {
	return project(plan.Items, [][]value.Value{nil})
}

// project evaluates every select item against every row, building the
// header list from each item's resolved header text.
func project(items []planner.SelectItem, rows [][]value.Value) (*Result, error) {
	headers := make([]string, len(items))
	for i, it := range items {
		headers[i] = it.Header
	}

	out := make([][]value.Value, len(rows))
	for r, row := range rows {
		projected := make([]value.Value, len(items))
		for i, it := range items {
			v, err := evaluateExpression(it.Expr, row)
			if err != nil {
				return nil, err
			}
			projected[i] = v
		}
		out[r] = projected
	}
	return &Result{Columns: headers, Rows: out, RowCount: len(out)}, nil
}

// sortRows performs a stable, multi-key ORDER BY sort: Null compares lowest
// (first under ASC, last under DESC), Int/Float promotion via
// value.CompareOrdered, DESC reversing only that key's ordering, and a
// stable fallback to scan order
// once every key compares equal. There is no LIMIT in the supported
// grammar, so there's no bounded-K to optimize for — a plain sort beats
// reaching for a top-K heap here.
func sortRows(rows [][]value.Value, orderBy []planner.OrderKey) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range orderBy {
			a, b := rows[i][key.ColumnIndex], rows[j][key.ColumnIndex]
			c, err := a.CompareOrdered(b)
			if err != nil || c == 0 {
				continue
			}
			if key.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
