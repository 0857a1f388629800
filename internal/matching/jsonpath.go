package matching

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// CompileJSONPath parses a JSONPath expression such as $.user.name.
func CompileJSONPath(path string) (jp.Expr, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", path, err)
	}
	return x, nil
}

// JSONPathValues evaluates x against a JSON body and returns every result
// rendered as a string. String results are returned unquoted; other values
// are rendered as compact JSON.
func JSONPathValues(x jp.Expr, body string) ([]string, error) {
	data, err := oj.ParseString(body)
	if err != nil {
		return nil, &ParseError{Format: "JSON", Side: SideActual, Err: err}
	}

	results := x.Get(data)
	values := make([]string, 0, len(results))
	for _, r := range results {
		if s, ok := r.(string); ok {
			values = append(values, s)
			continue
		}
		values = append(values, formatJSON(r))
	}
	return values, nil
}
