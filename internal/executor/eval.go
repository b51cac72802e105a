package executor

import (
	"github.com/cabewaldrop/pagedb/internal/dberr"
	"github.com/cabewaldrop/pagedb/internal/planner"
	"github.com/cabewaldrop/pagedb/internal/sql/parser"
	"github.com/cabewaldrop/pagedb/internal/value"
)

// evaluateExpression walks a planner.Expression tree against one row, so
// that arbitrary expressions, not just bare identifiers, can appear as a
// SELECT item. A nil row (the FROM-less SELECT case) makes every column
// reference evaluate to Null.
func evaluateExpression(expr *planner.Expression, row []value.Value) (value.Value, error) {
	switch expr.Kind {
	case planner.ExprLiteral:
		return expr.Literal, nil

	case planner.ExprColumn:
		if row == nil || expr.ColumnIndex >= len(row) {
			return value.Null(), nil
		}
		return row[expr.ColumnIndex], nil

	case planner.ExprBinary:
		left, err := evaluateExpression(expr.Left, row)
		if err != nil {
			return value.Value{}, err
		}
		right, err := evaluateExpression(expr.Right, row)
		if err != nil {
			return value.Value{}, err
		}
		return evaluateBinaryOp(expr.Operator, left, right)

	case planner.ExprUnary:
		operand, err := evaluateExpression(expr.Operand, row)
		if err != nil {
			return value.Value{}, err
		}
		return evaluateUnaryOp(expr.UnaryOperator, operand)

	case planner.ExprIsNull:
		operand, err := evaluateExpression(expr.Operand, row)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(operand.IsNull()), nil

	case planner.ExprIsNotNull:
		operand, err := evaluateExpression(expr.Operand, row)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(!operand.IsNull()), nil

	default:
		return value.Value{}, dberr.Execution("unsupported expression kind %v", expr.Kind)
	}
}

func evaluateBinaryOp(op parser.BinaryOp, left, right value.Value) (value.Value, error) {
	switch op {
	case parser.OpEquals:
		return left.Eq(right)
	case parser.OpNotEquals:
		return left.Ne(right)
	case parser.OpLessThan:
		return left.Lt(right)
	case parser.OpGreaterThan:
		return left.Gt(right)
	case parser.OpLessOrEqual:
		return left.Le(right)
	case parser.OpGreaterOrEqual:
		return left.Ge(right)
	case parser.OpAnd:
		return left.And(right)
	case parser.OpOr:
		return left.Or(right)
	case parser.OpAdd:
		return left.Add(right)
	case parser.OpSubtract:
		return left.Sub(right)
	case parser.OpMultiply:
		return left.Mul(right)
	case parser.OpDivide:
		return left.Div(right)
	case parser.OpModulo:
		return left.Mod(right)
	default:
		return value.Value{}, dberr.Execution("unsupported binary operator %v", op)
	}
}

func evaluateUnaryOp(op parser.UnaryOp, operand value.Value) (value.Value, error) {
	switch op {
	case parser.UnaryOpNot:
		return operand.Not()
	case parser.UnaryOpNegate:
		return operand.Negate()
	case parser.UnaryOpIdentity:
		return operand.Identity()
	default:
		return value.Value{}, dberr.Execution("unsupported unary operator %v", op)
	}
}

// evaluateCondition evaluates a planner.Condition against one row,
// implementing all four Condition variants: Constant returns its literal
// truth value directly; IsNull/IsNotNull check the operand's nullness;
// Expression evaluates and requires a Boolean result.
func evaluateCondition(cond *planner.Condition, row []value.Value) (bool, error) {
	switch cond.Kind {
	case planner.ConditionConstant:
		return cond.Constant, nil

	case planner.ConditionIsNull:
		v, err := evaluateExpression(cond.Expr, row)
		if err != nil {
			return false, err
		}
		return v.IsNull(), nil

	case planner.ConditionIsNotNull:
		v, err := evaluateExpression(cond.Expr, row)
		if err != nil {
			return false, err
		}
		return !v.IsNull(), nil

	case planner.ConditionExpression:
		v, err := evaluateExpression(cond.Expr, row)
		if err != nil {
			return false, err
		}
		if v.Kind != value.KindBool {
			return false, dberr.Execution("WHERE clause must evaluate to a boolean, got %s", v.Kind)
		}
		return v.B, nil

	default:
		return false, dberr.Execution("unsupported condition kind %v", cond.Kind)
	}
}

// matches evaluates cond against row for a WHERE clause, demoting any
// evaluation error to false (the row is excluded): this keeps
// SELECT/UPDATE/DELETE filtering behavior identical in the face of
// partial or type-mismatched data.
func matches(cond *planner.Condition, row []value.Value) bool {
	ok, err := evaluateCondition(cond, row)
	return err == nil && ok
}
