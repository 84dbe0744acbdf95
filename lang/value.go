package lang

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sergev/codelang/parser"
)

// ValueType enumerates the different runtime value categories.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeString
	TypeChar
	TypeInt
	TypeFloat
	TypeBool
	TypeFunction
)

var typeNames = map[ValueType]string{
	TypeNull:     "null",
	TypeString:   "STRING",
	TypeChar:     "CHAR",
	TypeInt:      "INT",
	TypeFloat:    "FLOAT",
	TypeBool:     "BOOL",
	TypeFunction: "function",
}

func (t ValueType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// TypeForKeyword maps a type keyword token to the value type it declares.
func TypeForKeyword(tt parser.TokenType) (ValueType, bool) {
	switch tt {
	case parser.TokenString:
		return TypeString, true
	case parser.TokenChar:
		return TypeChar, true
	case parser.TokenInt:
		return TypeInt, true
	case parser.TokenFloat:
		return TypeFloat, true
	case parser.TokenBool:
		return TypeBool, true
	}
	return TypeNull, false
}

// Value represents any runtime object in the interpreter.
type Value struct {
	Type    ValueType
	payload interface{}
}

// Null is the value of a declared but uninitialized variable.
var Null = Value{Type: TypeNull}

// StringValue constructs a string Value.
func StringValue(s string) Value {
	return Value{Type: TypeString, payload: s}
}

// CharValue constructs a character Value.
func CharValue(r rune) Value {
	return Value{Type: TypeChar, payload: r}
}

// IntValue constructs an integer Value.
func IntValue(i int64) Value {
	return Value{Type: TypeInt, payload: i}
}

// FloatValue constructs a floating-point Value.
func FloatValue(f float64) Value {
	return Value{Type: TypeFloat, payload: f}
}

// BoolValue returns the boolean Value equivalent.
func BoolValue(b bool) Value {
	return Value{Type: TypeBool, payload: b}
}

// FunctionValue wraps a callable.
func FunctionValue(fn Callable) Value {
	return Value{Type: TypeFunction, payload: fn}
}

// FromLiteral converts a token literal into a Value.
func FromLiteral(lit interface{}) Value {
	switch v := lit.(type) {
	case string:
		return StringValue(v)
	case rune:
		return CharValue(v)
	case int64:
		return IntValue(v)
	case int:
		return IntValue(int64(v))
	case float64:
		return FloatValue(v)
	case bool:
		return BoolValue(v)
	default:
		return Null
	}
}

func (v Value) Str() string {
	if s, ok := v.payload.(string); ok {
		return s
	}
	return ""
}

func (v Value) Char() rune {
	if r, ok := v.payload.(rune); ok {
		return r
	}
	return 0
}

func (v Value) Int() int64 {
	if i, ok := v.payload.(int64); ok {
		return i
	}
	return 0
}

func (v Value) Float() float64 {
	if f, ok := v.payload.(float64); ok {
		return f
	}
	return 0
}

func (v Value) Bool() bool {
	if b, ok := v.payload.(bool); ok {
		return b
	}
	return false
}

func (v Value) Callable() Callable {
	if c, ok := v.payload.(Callable); ok {
		return c
	}
	return nil
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// IsTruthy reports whether v counts as true in a condition. Only null and
// FALSE are falsy.
func IsTruthy(v Value) bool {
	switch v.Type {
	case TypeNull:
		return false
	case TypeBool:
		return v.Bool()
	default:
		return true
	}
}

// Equal compares two values structurally. Values of different types are
// never equal, so INT 1 and FLOAT 1.0 differ.
func Equal(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeNull:
		return true
	case TypeString:
		return a.Str() == b.Str()
	case TypeChar:
		return a.Char() == b.Char()
	case TypeInt:
		return a.Int() == b.Int()
	case TypeFloat:
		return a.Float() == b.Float()
	case TypeBool:
		return a.Bool() == b.Bool()
	case TypeFunction:
		return a.Callable() == b.Callable()
	}
	return false
}

// String renders v the way DISPLAY and & do.
func (v Value) String() string {
	switch v.Type {
	case TypeNull:
		return "null"
	case TypeString:
		return v.Str()
	case TypeChar:
		return string(v.Char())
	case TypeInt:
		return strconv.FormatInt(v.Int(), 10)
	case TypeFloat:
		return formatFloat(v.Float())
	case TypeBool:
		if v.Bool() {
			return "TRUE"
		}
		return "FALSE"
	case TypeFunction:
		if fn := v.Callable(); fn != nil {
			return fn.String()
		}
		return "<fn>"
	default:
		return "<unknown>"
	}
}

// formatFloat prints the shortest decimal form without a trailing ".0".
// Very large and very small magnitudes use scientific notation.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'E', -1, 64), "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	sign := ""
	if strings.HasPrefix(exp, "-") {
		sign = "-"
	}
	digits := strings.TrimLeft(strings.TrimLeft(exp, "+-"), "0")
	if digits == "" {
		digits = "0"
	}
	return fmt.Sprintf("%sE%s%s", mant, sign, digits)
}
