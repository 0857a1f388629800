package matching

import (
	"fmt"
	"math"
	"slices"

	"github.com/ohler55/ojg/oj"
)

// JSONDiff compares two JSON documents in non-extensible mode.
func JSONDiff(expected, actual string) ([]Difference, error) {
	exp, err := oj.ParseString(expected)
	if err != nil {
		return nil, &ParseError{Format: "JSON", Side: SideExpected, Err: err}
	}
	act, err := oj.ParseString(actual)
	if err != nil {
		return nil, &ParseError{Format: "JSON", Side: SideActual, Err: err}
	}

	var diffs []Difference
	compareJSON("$", exp, act, &diffs)
	return diffs, nil
}

func compareJSON(path string, exp, act any, diffs *[]Difference) {
	switch ev := exp.(type) {
	case map[string]any:
		av, ok := act.(map[string]any)
		if !ok {
			*diffs = append(*diffs, typeDifference(path, exp, act))
			return
		}
		compareObjects(path, ev, av, diffs)
	case []any:
		av, ok := act.([]any)
		if !ok {
			*diffs = append(*diffs, typeDifference(path, exp, act))
			return
		}
		compareArrays(path, ev, av, diffs)
	default:
		if !scalarsEqual(exp, act) {
			*diffs = append(*diffs, Difference{
				Path:     path,
				Message:  "value",
				Expected: formatJSON(exp),
				Actual:   formatJSON(act),
			})
		}
	}
}

func compareObjects(path string, exp, act map[string]any, diffs *[]Difference) {
	keys := make([]string, 0, len(exp))
	for k := range exp {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		av, ok := act[k]
		if !ok {
			*diffs = append(*diffs, Difference{Path: path + "." + k, Message: "expected field but none found"})
			continue
		}
		compareJSON(path+"."+k, exp[k], av, diffs)
	}

	extra := make([]string, 0)
	for k := range act {
		if _, ok := exp[k]; !ok {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	for _, k := range extra {
		*diffs = append(*diffs, Difference{Path: path + "." + k, Message: "unexpected field"})
	}
}

// compareArrays requires equal length and a one-to-one pairing of equivalent
// elements, regardless of order.
func compareArrays(path string, exp, act []any, diffs *[]Difference) {
	if len(exp) != len(act) {
		*diffs = append(*diffs, Difference{
			Path:     path,
			Message:  "array length",
			Expected: fmt.Sprint(len(exp)),
			Actual:   fmt.Sprint(len(act)),
		})
		return
	}

	used := make([]bool, len(act))
	for i, e := range exp {
		found := false
		for j, a := range act {
			if used[j] {
				continue
			}
			var sub []Difference
			compareJSON(path, e, a, &sub)
			if len(sub) == 0 {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			*diffs = append(*diffs, Difference{
				Path:    fmt.Sprintf("%s[%d]", path, i),
				Message: "no matching element for " + formatJSON(e),
			})
		}
	}
}

func typeDifference(path string, exp, act any) Difference {
	return Difference{
		Path:     path,
		Message:  "type",
		Expected: formatJSON(exp),
		Actual:   formatJSON(act),
	}
}

// scalarsEqual compares integers exactly and falls back to float64 when
// either side is fractional.
func scalarsEqual(exp, act any) bool {
	if ei, ok := toInt64(exp); ok {
		if ai, ok := toInt64(act); ok {
			return ei == ai
		}
	}
	if en, ok := toFloat64(exp); ok {
		an, ok := toFloat64(act)
		return ok && en == an
	}
	return exp == act
}

func formatJSON(v any) string {
	return oj.JSON(v, &oj.Options{Sort: true})
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
