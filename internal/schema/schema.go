// Package schema defines column typing and the constraints attached to a
// column definition, independent of any one table's storage.
package schema

import (
	"github.com/cabewaldrop/pagedb/internal/dberr"
	"github.com/cabewaldrop/pagedb/internal/value"
)

// TypeKind distinguishes the two supported column data types.
type TypeKind uint8

const (
	TypeInt TypeKind = iota
	TypeVarchar
)

// DataType is Int(width) | Varchar(max_len). Width/MaxLen of 0 means
// "unspecified": INT defaults its width to 64 bits, VARCHAR with no length
// is unbounded.
type DataType struct {
	Kind   TypeKind
	Width  int // bits, INT only; 0 => defaults to 64
	MaxLen int // characters, VARCHAR only; 0 => unbounded
}

// Int builds an Int(width) data type. A width of 0 defaults to 64.
func Int(width int) DataType {
	if width == 0 {
		width = 64
	}
	return DataType{Kind: TypeInt, Width: width}
}

// Varchar builds a Varchar(maxLen) data type. A maxLen of 0 is unbounded.
func Varchar(maxLen int) DataType {
	return DataType{Kind: TypeVarchar, MaxLen: maxLen}
}

func (t DataType) String() string {
	switch t.Kind {
	case TypeInt:
		return "INT"
	case TypeVarchar:
		if t.MaxLen > 0 {
			return "VARCHAR"
		}
		return "VARCHAR(unbounded)"
	default:
		return "UNKNOWN"
	}
}

// ColumnDef is one column of a table: its name, type, and constraints.
// IsPrimary implies NotNull and Unique; NewColumnDef enforces this rather
// than trusting callers to set all three flags consistently.
type ColumnDef struct {
	Name      string
	Type      DataType
	NotNull   bool
	Unique    bool
	IsPrimary bool
}

// NewColumnDef builds a ColumnDef, folding IsPrimary's implications in.
func NewColumnDef(name string, typ DataType, notNull, unique, isPrimary bool) ColumnDef {
	if isPrimary {
		notNull = true
		unique = true
	}
	return ColumnDef{Name: name, Type: typ, NotNull: notNull, Unique: unique, IsPrimary: isPrimary}
}

// CheckValue validates v against t: Null is always accepted (NOT NULL is a
// column-level constraint checked separately), an Int column only accepts
// KindInt, and a Varchar column only accepts KindString that fits within
// MaxLen when one is set.
func (t DataType) CheckValue(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	switch t.Kind {
	case TypeInt:
		if v.Kind != value.KindInt {
			return dberr.Schema("type mismatch: expected INT, got %s", v.Kind)
		}
	case TypeVarchar:
		if v.Kind != value.KindString {
			return dberr.Schema("type mismatch: expected VARCHAR, got %s", v.Kind)
		}
		if t.MaxLen > 0 && len(v.S) > t.MaxLen {
			return dberr.Schema("string exceeds VARCHAR width: %d > %d", len(v.S), t.MaxLen)
		}
	default:
		return dberr.Schema("unknown column type")
	}
	return nil
}

// FindColumn returns the index of the column named name within cols, or
// ok=false if no such column exists.
func FindColumn(cols []ColumnDef, name string) (int, bool) {
	for i, c := range cols {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Validate checks cols for structural well-formedness: no duplicate names,
// no empty names.
func Validate(cols []ColumnDef) error {
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c.Name == "" {
			return dberr.Schema("column name must not be empty")
		}
		if _, dup := seen[c.Name]; dup {
			return dberr.Schema("duplicate column %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}
