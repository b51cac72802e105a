// Package value implements the engine's tagged-variant runtime value and
// the arithmetic/comparison semantics operators evaluate over it.
//
// EDUCATIONAL NOTES:
// ------------------
// A runtime value is "kind plus one field per kind, plus an IsNull
// flag", made into a genuine tagged union: a single Kind byte selects
// which field is meaningful. On top of that shape sit the numeric
// promotion, arithmetic, and Null-aware comparison rules every operator
// in the engine evaluates through.
package value

import (
	"fmt"
	"math"

	"github.com/cabewaldrop/pagedb/internal/dberr"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindInt:
		return "INT"
	case KindFloat:
		return "FLOAT"
	case KindString:
		return "STRING"
	case KindBool:
		return "BOOL"
	default:
		return "UNKNOWN"
	}
}

// Value is the tagged variant Int(i32) | Float(f64) | String(utf8) |
// Boolean | Null. Every field is exported so the msgpack codec can encode
// it without a custom MarshalMsgpack implementation; Kind determines which
// of I/F/S/B is meaningful.
type Value struct {
	Kind Kind
	I    int32
	F    float64
	S    string
	B    bool
}

// Null returns the Null value.
func Null() Value { return Value{Kind: KindNull} }

// Int wraps a 32-bit integer.
func Int(i int32) Value { return Value{Kind: KindInt, I: i} }

// Float wraps a 64-bit float.
func Float(f float64) Value { return Value{Kind: KindFloat, F: f} }

// Str wraps a string.
func Str(s string) Value { return Value{Kind: KindString, S: s} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Kind: KindBool, B: b} }

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// String renders v for display (result-set printing, error messages).
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindFloat:
		return fmt.Sprintf("%g", v.F)
	case KindString:
		return v.S
	case KindBool:
		if v.B {
			return "TRUE"
		}
		return "FALSE"
	default:
		return "?"
	}
}

func isNumeric(k Kind) bool { return k == KindInt || k == KindFloat }

// asFloat returns v's numeric value promoted to float64. v must be numeric.
func (v Value) asFloat() float64 {
	if v.Kind == KindFloat {
		return v.F
	}
	return float64(v.I)
}

// arith applies a numeric binary operator with Int/Float promotion: if
// either operand is Float the result is Float, otherwise Int. Non-numeric
// operands (including Null) are an execution error.
func arith(a, b Value, name string, intOp func(int32, int32) (int32, error), floatOp func(float64, float64) float64) (Value, error) {
	if !isNumeric(a.Kind) || !isNumeric(b.Kind) {
		return Value{}, dberr.Execution("%s requires numeric operands, got %s and %s", name, a.Kind, b.Kind)
	}
	if a.Kind == KindFloat || b.Kind == KindFloat {
		return Float(floatOp(a.asFloat(), b.asFloat())), nil
	}
	r, err := intOp(a.I, b.I)
	if err != nil {
		return Value{}, err
	}
	return Int(r), nil
}

// Add implements +.
func (v Value) Add(other Value) (Value, error) {
	return arith(v, other, "+",
		func(x, y int32) (int32, error) { return x + y, nil },
		func(x, y float64) float64 { return x + y })
}

// Sub implements -.
func (v Value) Sub(other Value) (Value, error) {
	return arith(v, other, "-",
		func(x, y int32) (int32, error) { return x - y, nil },
		func(x, y float64) float64 { return x - y })
}

// Mul implements *.
func (v Value) Mul(other Value) (Value, error) {
	return arith(v, other, "*",
		func(x, y int32) (int32, error) { return x * y, nil },
		func(x, y float64) float64 { return x * y })
}

// Div implements /. Division by zero is an execution error for both Int
// and Float operands.
func (v Value) Div(other Value) (Value, error) {
	if isNumeric(v.Kind) && isNumeric(other.Kind) && other.asFloat() == 0 {
		return Value{}, dberr.Execution("division by zero")
	}
	return arith(v, other, "/",
		func(x, y int32) (int32, error) { return x / y, nil },
		func(x, y float64) float64 { return x / y })
}

// Mod implements %. Modulo by zero is an execution error.
func (v Value) Mod(other Value) (Value, error) {
	if !isNumeric(v.Kind) || !isNumeric(other.Kind) {
		return Value{}, dberr.Execution("%% requires numeric operands, got %s and %s", v.Kind, other.Kind)
	}
	if v.Kind == KindFloat || other.Kind == KindFloat {
		y := other.asFloat()
		if y == 0 {
			return Value{}, dberr.Execution("modulo by zero")
		}
		return Float(math.Mod(v.asFloat(), y)), nil
	}
	if other.I == 0 {
		return Value{}, dberr.Execution("modulo by zero")
	}
	return Int(v.I % other.I), nil
}

// Negate implements unary -. Only numeric operands are valid.
func (v Value) Negate() (Value, error) {
	switch v.Kind {
	case KindInt:
		return Int(-v.I), nil
	case KindFloat:
		return Float(-v.F), nil
	default:
		return Value{}, dberr.Execution("unary - requires a numeric operand, got %s", v.Kind)
	}
}

// Identity implements unary +: returns v unchanged if numeric.
func (v Value) Identity() (Value, error) {
	if !isNumeric(v.Kind) {
		return Value{}, dberr.Execution("unary + requires a numeric operand, got %s", v.Kind)
	}
	return v, nil
}

// Not implements NOT. Only a Boolean operand is valid.
func (v Value) Not() (Value, error) {
	if v.Kind != KindBool {
		return Value{}, dberr.Execution("NOT requires a boolean operand, got %s", v.Kind)
	}
	return Bool(!v.B), nil
}

// And implements AND. Both operands must be Boolean.
func (v Value) And(other Value) (Value, error) {
	if v.Kind != KindBool || other.Kind != KindBool {
		return Value{}, dberr.Execution("AND requires boolean operands, got %s and %s", v.Kind, other.Kind)
	}
	return Bool(v.B && other.B), nil
}

// Or implements OR. Both operands must be Boolean.
func (v Value) Or(other Value) (Value, error) {
	if v.Kind != KindBool || other.Kind != KindBool {
		return Value{}, dberr.Execution("OR requires boolean operands, got %s and %s", v.Kind, other.Kind)
	}
	return Bool(v.B || other.B), nil
}

// compareTyped compares two non-null values of compatible type, returning
// -1/0/1. Int and Float compare numerically (with promotion); String
// compares lexically; Bool compares false < true. Incompatible types
// (e.g. string vs int) are an execution error.
func compareTyped(a, b Value) (int, error) {
	switch {
	case isNumeric(a.Kind) && isNumeric(b.Kind):
		x, y := a.asFloat(), b.asFloat()
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	case a.Kind == KindString && b.Kind == KindString:
		switch {
		case a.S < b.S:
			return -1, nil
		case a.S > b.S:
			return 1, nil
		default:
			return 0, nil
		}
	case a.Kind == KindBool && b.Kind == KindBool:
		switch {
		case a.B == b.B:
			return 0, nil
		case !a.B:
			return -1, nil
		default:
			return 1, nil
		}
	default:
		return 0, dberr.Execution("cannot compare %s and %s", a.Kind, b.Kind)
	}
}

// CompareOrdered gives the total order used by ORDER BY: Null sorts below
// every non-null value regardless of column direction (direction reversal
// happens one level up, in the sort comparator). Two Nulls compare equal.
func (v Value) CompareOrdered(other Value) (int, error) {
	if v.IsNull() && other.IsNull() {
		return 0, nil
	}
	if v.IsNull() {
		return -1, nil
	}
	if other.IsNull() {
		return 1, nil
	}
	return compareTyped(v, other)
}

// Eq implements =. Any comparison where either operand is Null yields
// Boolean false rather than an error — Null propagates as false rather
// than failing the comparison; type mismatches between two non-null
// operands are still an execution error.
func (v Value) Eq(other Value) (Value, error) {
	if v.IsNull() || other.IsNull() {
		return Bool(false), nil
	}
	c, err := compareTyped(v, other)
	if err != nil {
		return Value{}, err
	}
	return Bool(c == 0), nil
}

// Ne implements <>.
func (v Value) Ne(other Value) (Value, error) {
	if v.IsNull() || other.IsNull() {
		return Bool(false), nil
	}
	c, err := compareTyped(v, other)
	if err != nil {
		return Value{}, err
	}
	return Bool(c != 0), nil
}

// Lt implements <.
func (v Value) Lt(other Value) (Value, error) { return v.ordered(other, func(c int) bool { return c < 0 }) }

// Le implements <=.
func (v Value) Le(other Value) (Value, error) {
	return v.ordered(other, func(c int) bool { return c <= 0 })
}

// Gt implements >.
func (v Value) Gt(other Value) (Value, error) { return v.ordered(other, func(c int) bool { return c > 0 }) }

// Ge implements >=.
func (v Value) Ge(other Value) (Value, error) {
	return v.ordered(other, func(c int) bool { return c >= 0 })
}

func (v Value) ordered(other Value, pred func(int) bool) (Value, error) {
	if v.IsNull() || other.IsNull() {
		return Bool(false), nil
	}
	c, err := compareTyped(v, other)
	if err != nil {
		return Value{}, err
	}
	return Bool(pred(c)), nil
}

// EqualForUniqueness reports whether two non-null values of the same
// column are equal for the purposes of a UNIQUE constraint check. Null
// values are never passed here: the caller skips any column whose
// candidate or stored value is Null before calling this.
func (v Value) EqualForUniqueness(other Value) bool {
	c, err := compareTyped(v, other)
	return err == nil && c == 0
}
