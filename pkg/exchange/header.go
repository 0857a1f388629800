package exchange

import (
	"net/http"
	"slices"
	"strings"
)

// HeaderField is one header name with its values, in the order received.
type HeaderField struct {
	Name   string
	Values []string
}

// Header is an ordered multimap of header names to values.
// Names are case-sensitive. The zero value is an empty header.
type Header struct {
	fields []HeaderField
}

// MakeHeader builds a Header from fields. Repeated names are merged into the
// first occurrence, keeping value order.
func MakeHeader(fields ...HeaderField) Header {
	var h Header
	for _, f := range fields {
		h = h.with(f.Name, f.Values...)
	}
	return h
}

// HeaderFromHTTP converts a net/http header. Names are sorted because
// http.Header does not keep arrival order between names.
func HeaderFromHTTP(src http.Header) Header {
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	slices.Sort(names)

	h := Header{fields: make([]HeaderField, 0, len(names))}
	for _, name := range names {
		h.fields = append(h.fields, HeaderField{Name: name, Values: slices.Clone(src[name])})
	}
	return h
}

func (h Header) with(name string, values ...string) Header {
	fields := slices.Clone(h.fields)
	for i := range fields {
		if fields[i].Name == name {
			fields[i].Values = append(slices.Clone(fields[i].Values), values...)
			return Header{fields: fields}
		}
	}
	return Header{fields: append(fields, HeaderField{Name: name, Values: slices.Clone(values)})}
}

// Values returns a copy of the values for name, or nil if absent.
func (h Header) Values(name string) []string {
	for _, f := range h.fields {
		if f.Name == name {
			return slices.Clone(f.Values)
		}
	}
	return nil
}

// Has reports whether name is present.
func (h Header) Has(name string) bool {
	for _, f := range h.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Names returns header names in order.
func (h Header) Names() []string {
	names := make([]string, len(h.fields))
	for i, f := range h.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a deep copy of the header fields.
func (h Header) Fields() []HeaderField {
	out := make([]HeaderField, len(h.fields))
	for i, f := range h.fields {
		out[i] = HeaderField{Name: f.Name, Values: slices.Clone(f.Values)}
	}
	return out
}

// Len returns the number of distinct names.
func (h Header) Len() int {
	return len(h.fields)
}

// Joined returns the values of name joined by sep.
func (h Header) Joined(name, sep string) string {
	return strings.Join(h.Values(name), sep)
}

// Map returns the header as a fresh map, for logging and JSON output.
func (h Header) Map() map[string][]string {
	if len(h.fields) == 0 {
		return nil
	}
	m := make(map[string][]string, len(h.fields))
	for _, f := range h.fields {
		m[f.Name] = slices.Clone(f.Values)
	}
	return m
}

// String renders the header as {name=[v1 v2], other=[v]}.
func (h Header) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range h.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString("=[")
		b.WriteString(strings.Join(f.Values, " "))
		b.WriteByte(']')
	}
	b.WriteByte('}')
	return b.String()
}
