package expect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/getmockd/httpspy/internal/matching"
	"github.com/ohler55/ojg/jp"
)

type kind int

const (
	kindAny kind = iota
	kindEqual
	kindEqualFold
	kindXML
	kindJSON
	kindContains
	kindPrefix
	kindRegexp
	kindGlob
	kindJSONPath
	kindExpr
	kindCustom
	kindAllOf
	kindAnyOf
	kindNot
)

// Value is a predicate over a single string value. The zero Value matches
// anything.
type Value struct {
	kind     kind
	text     string
	re       *regexp.Regexp
	path     jp.Expr
	program  *vm.Program
	pred     func(string) bool
	operands []Value
}

// outcome is the result of evaluating a Value against one string.
type outcome struct {
	matched bool
	detail  string
	err     error
}

// Any matches every value.
func Any() Value { return Value{kind: kindAny} }

// Equal matches the exact string s.
func Equal(s string) Value { return Value{kind: kindEqual, text: s} }

// EqualFold matches s under Unicode case folding.
func EqualFold(s string) Value { return Value{kind: kindEqualFold, text: s} }

// EqualXML matches an XML document structurally equal to s. An empty s
// matches only an empty value.
func EqualXML(s string) Value { return Value{kind: kindXML, text: s} }

// EqualJSON matches a JSON document structurally equal to s, with no extra
// fields and arrays compared regardless of order. An empty s matches only an
// empty value.
func EqualJSON(s string) Value { return Value{kind: kindJSON, text: s} }

// Contains matches values containing s.
func Contains(s string) Value { return Value{kind: kindContains, text: s} }

// HasPrefix matches values starting with s.
func HasPrefix(s string) Value { return Value{kind: kindPrefix, text: s} }

// Regexp matches values containing a match of pattern.
func Regexp(pattern string) (Value, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Value{}, invalid("regexp %q: %v", pattern, err)
	}
	return Value{kind: kindRegexp, text: pattern, re: re}, nil
}

// Glob matches values against a doublestar pattern, e.g. /api/**.
func Glob(pattern string) (Value, error) {
	if !matching.ValidGlob(pattern) {
		return Value{}, invalid("glob %q is malformed", pattern)
	}
	return Value{kind: kindGlob, text: pattern}, nil
}

// JSONPath parses the value as JSON, evaluates path and matches when any
// result satisfies v. Non-JSON input is a structural error.
func JSONPath(path string, v Value) (Value, error) {
	x, err := matching.CompileJSONPath(path)
	if err != nil {
		return Value{}, invalid("%v", err)
	}
	return Value{kind: kindJSONPath, text: path, path: x, operands: []Value{v}}, nil
}

// Expr matches when the boolean expression src evaluates to true. The value
// under test is bound to the variable value, e.g. `len(value) > 3`.
func Expr(src string) (Value, error) {
	program, err := expr.Compile(src, expr.Env(map[string]any{"value": ""}), expr.AsBool())
	if err != nil {
		return Value{}, invalid("expr %q: %v", src, err)
	}
	return Value{kind: kindExpr, text: src, program: program}, nil
}

// Satisfies wraps an arbitrary predicate. label is used in descriptions.
func Satisfies(label string, pred func(string) bool) Value {
	return Value{kind: kindCustom, text: label, pred: pred}
}

// AllOf matches when every operand matches.
func AllOf(vs ...Value) Value { return Value{kind: kindAllOf, operands: vs} }

// AnyOf matches when at least one operand matches.
func AnyOf(vs ...Value) Value { return Value{kind: kindAnyOf, operands: vs} }

// Not inverts v.
func Not(v Value) Value { return Value{kind: kindNot, operands: []Value{v}} }

// MustRegexp is like Regexp but panics on error.
func MustRegexp(pattern string) Value { return must(Regexp(pattern)) }

// MustGlob is like Glob but panics on error.
func MustGlob(pattern string) Value { return must(Glob(pattern)) }

// MustJSONPath is like JSONPath but panics on error.
func MustJSONPath(path string, v Value) Value { return must(JSONPath(path, v)) }

// MustExpr is like Expr but panics on error.
func MustExpr(src string) Value { return must(Expr(src)) }

func must(v Value, err error) Value {
	if err != nil {
		panic(err)
	}
	return v
}

// Matches reports whether actual satisfies v. The error is non-nil only when
// a structural comparison could not be performed.
func (v Value) Matches(actual string) (bool, error) {
	o := v.evaluate(actual)
	return o.matched, o.err
}

// Describe returns a human-readable description of v.
func (v Value) Describe() string {
	switch v.kind {
	case kindAny:
		return "anything"
	case kindEqual:
		return strconv.Quote(v.text)
	case kindEqualFold:
		return strconv.Quote(v.text) + " (ignoring case)"
	case kindXML:
		return "equals XML : " + strconv.Quote(v.text)
	case kindJSON:
		return "equals JSON : " + strconv.Quote(v.text)
	case kindContains:
		return "containing " + strconv.Quote(v.text)
	case kindPrefix:
		return "starting with " + strconv.Quote(v.text)
	case kindRegexp:
		return "matching /" + v.text + "/"
	case kindGlob:
		return "matching glob " + strconv.Quote(v.text)
	case kindJSONPath:
		return "JSON path " + v.text + " with " + v.operands[0].Describe()
	case kindExpr:
		return "satisfying expr " + strconv.Quote(v.text)
	case kindCustom:
		return v.text
	case kindAllOf:
		return joinDescriptions(v.operands, " and ")
	case kindAnyOf:
		return joinDescriptions(v.operands, " or ")
	case kindNot:
		return "not " + v.operands[0].Describe()
	}
	return fmt.Sprintf("unknown(%d)", v.kind)
}

// DescribeMismatch explains why actual does not satisfy v.
func (v Value) DescribeMismatch(actual string) string {
	o := v.evaluate(actual)
	if o.err != nil {
		return "could not be compared: " + o.err.Error()
	}
	msg := "was " + strconv.Quote(actual)
	if o.detail != "" {
		msg += "\n" + o.detail
	}
	return msg
}

// String implements fmt.Stringer.
func (v Value) String() string { return v.Describe() }

func joinDescriptions(vs []Value, sep string) string {
	parts := make([]string, len(vs))
	for i, op := range vs {
		parts[i] = op.Describe()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func (v Value) evaluate(actual string) outcome {
	switch v.kind {
	case kindAny:
		return outcome{matched: true}
	case kindEqual:
		return outcome{matched: actual == v.text}
	case kindEqualFold:
		return outcome{matched: matching.FoldEqual(actual, v.text)}
	case kindXML:
		return structural("XML", v.text, actual, matching.XMLDiff)
	case kindJSON:
		return structural("JSON", v.text, actual, matching.JSONDiff)
	case kindContains:
		return outcome{matched: strings.Contains(actual, v.text)}
	case kindPrefix:
		return outcome{matched: strings.HasPrefix(actual, v.text)}
	case kindRegexp:
		return outcome{matched: v.re.MatchString(actual)}
	case kindGlob:
		return outcome{matched: matching.Glob(v.text, actual)}
	case kindJSONPath:
		return v.evaluateJSONPath(actual)
	case kindExpr:
		return v.evaluateExpr(actual)
	case kindCustom:
		return outcome{matched: v.pred != nil && v.pred(actual)}
	case kindAllOf:
		for _, op := range v.operands {
			if o := op.evaluate(actual); !o.matched || o.err != nil {
				return o
			}
		}
		return outcome{matched: true}
	case kindAnyOf:
		var firstErr error
		for _, op := range v.operands {
			o := op.evaluate(actual)
			if o.matched {
				return o
			}
			if firstErr == nil {
				firstErr = o.err
			}
		}
		return outcome{err: firstErr}
	case kindNot:
		o := v.operands[0].evaluate(actual)
		if o.err != nil {
			return o
		}
		return outcome{matched: !o.matched}
	}
	return outcome{}
}

func structural(format, expected, actual string, diff func(string, string) ([]matching.Difference, error)) outcome {
	if expected == "" {
		return outcome{matched: actual == ""}
	}
	diffs, err := diff(expected, actual)
	if err != nil {
		return outcome{err: &StructuralError{Format: format, Err: err}}
	}
	if len(diffs) > 0 {
		return outcome{detail: matching.FormatDifferences(diffs)}
	}
	return outcome{matched: true}
}

func (v Value) evaluateJSONPath(actual string) outcome {
	values, err := matching.JSONPathValues(v.path, actual)
	if err != nil {
		return outcome{err: &StructuralError{Format: "JSON", Err: err}}
	}
	for _, got := range values {
		o := v.operands[0].evaluate(got)
		if o.err != nil {
			return o
		}
		if o.matched {
			return outcome{matched: true}
		}
	}
	if len(values) == 0 {
		return outcome{detail: v.text + " selected nothing"}
	}
	return outcome{detail: v.text + " selected [" + strings.Join(values, ", ") + "]"}
}

func (v Value) evaluateExpr(actual string) outcome {
	result, err := expr.Run(v.program, map[string]any{"value": actual})
	if err != nil {
		return outcome{detail: "expr failed: " + err.Error()}
	}
	ok, _ := result.(bool)
	return outcome{matched: ok}
}
