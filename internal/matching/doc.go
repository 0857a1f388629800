// Package matching provides the comparison engines behind value expectations.
//
// It implements:
//
//   - XML structural equality (XMLDiff), ignoring whitespace, comments and
//     attribute order, with CDATA treated as text
//   - JSON structural equality (JSONDiff) in non-extensible mode: no extra or
//     missing object keys, arrays compared without regard to order
//   - JSONPath extraction (CompileJSONPath, JSONPathValues)
//   - glob matching (Glob) and Unicode case-insensitive equality (FoldEqual)
//
// Diff functions return a list of Difference values, empty when the two
// documents are equivalent, or a *ParseError when either side cannot be parsed.
package matching
