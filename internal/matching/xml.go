package matching

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

var (
	errNoRootElement   = errors.New("no root element")
	errMultipleRoots   = errors.New("more than one root element")
	errTextOutsideRoot = errors.New("text outside the root element")
)

// XMLDiff compares two XML documents structurally.
func XMLDiff(expected, actual string) ([]Difference, error) {
	exp, err := parseXML(expected)
	if err != nil {
		return nil, &ParseError{Format: "XML", Side: SideExpected, Err: err}
	}
	act, err := parseXML(actual)
	if err != nil {
		return nil, &ParseError{Format: "XML", Side: SideActual, Err: err}
	}

	var diffs []Difference
	compareElements("/"+exp.Tag, exp, act, &diffs)
	return diffs, nil
}

func parseXML(s string) (*etree.Element, error) {
	// etree tolerates mismatched end tags, so check well-formedness first.
	dec := xml.NewDecoder(strings.NewReader(s))
	depth, roots := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return nil, errMultipleRoots
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(strings.TrimSpace(string(t))) > 0 {
				return nil, errTextOutsideRoot
			}
		}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, errNoRootElement
	}
	return root, nil
}

func qualifiedName(e *etree.Element) string {
	if ns := e.NamespaceURI(); ns != "" {
		return "{" + ns + "}" + e.Tag
	}
	return e.Tag
}

func compareElements(path string, exp, act *etree.Element, diffs *[]Difference) {
	if qualifiedName(exp) != qualifiedName(act) {
		*diffs = append(*diffs, Difference{
			Path:     path,
			Message:  "element name",
			Expected: qualifiedName(exp),
			Actual:   qualifiedName(act),
		})
		return
	}

	compareAttributes(path, exp, act, diffs)

	if et, at := elementText(exp), elementText(act); et != at {
		*diffs = append(*diffs, Difference{
			Path:     path,
			Message:  "text",
			Expected: strconv.Quote(et),
			Actual:   strconv.Quote(at),
		})
	}

	expChildren := exp.ChildElements()
	actChildren := act.ChildElements()
	if len(expChildren) != len(actChildren) {
		*diffs = append(*diffs, Difference{
			Path:     path,
			Message:  "number of child elements",
			Expected: strconv.Itoa(len(expChildren)),
			Actual:   strconv.Itoa(len(actChildren)),
		})
	}
	for i := range min(len(expChildren), len(actChildren)) {
		childPath := fmt.Sprintf("%s/%s[%d]", path, expChildren[i].Tag, i+1)
		compareElements(childPath, expChildren[i], actChildren[i], diffs)
	}
}

func attributes(e *etree.Element) map[string]string {
	attrs := make(map[string]string, len(e.Attr))
	for i := range e.Attr {
		a := &e.Attr[i]
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		attrs[attrName(a)] = a.Value
	}
	return attrs
}

// attrName keys a by namespace URI so differing prefixes for the same
// namespace compare equal.
func attrName(a *etree.Attr) string {
	if ns := a.NamespaceURI(); ns != "" {
		return "{" + ns + "}" + a.Key
	}
	return a.Key
}

func compareAttributes(path string, exp, act *etree.Element, diffs *[]Difference) {
	expAttrs := attributes(exp)
	actAttrs := attributes(act)

	keys := make([]string, 0, len(expAttrs)+len(actAttrs))
	for k := range expAttrs {
		keys = append(keys, k)
	}
	for k := range actAttrs {
		if _, ok := expAttrs[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, k := range keys {
		ev, inExp := expAttrs[k]
		av, inAct := actAttrs[k]
		switch {
		case !inAct:
			*diffs = append(*diffs, Difference{Path: path + "/@" + k, Message: "attribute missing"})
		case !inExp:
			*diffs = append(*diffs, Difference{Path: path + "/@" + k, Message: "unexpected attribute"})
		case ev != av:
			*diffs = append(*diffs, Difference{
				Path:     path + "/@" + k,
				Message:  "attribute value",
				Expected: strconv.Quote(ev),
				Actual:   strconv.Quote(av),
			})
		}
	}
}

// elementText concatenates the direct text and CDATA children of e, trimmed.
func elementText(e *etree.Element) string {
	var b strings.Builder
	for _, tok := range e.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return strings.TrimSpace(b.String())
}
