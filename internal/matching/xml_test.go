package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLDiff_Equivalent(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{
			name:     "identical",
			expected: `<a><b>1</b></a>`,
			actual:   `<a><b>1</b></a>`,
		},
		{
			name:     "whitespace and comments ignored",
			expected: `<a><b>1</b><c x="1" y="2"/></a>`,
			actual: `<a>
  <!-- comment -->
  <b> 1 </b>
  <c y="2" x="1"></c>
</a>`,
		},
		{
			name:     "cdata equals text",
			expected: `<a><![CDATA[hello]]></a>`,
			actual:   `<a>hello</a>`,
		},
		{
			name:     "namespace prefixes resolve to the same URI",
			expected: `<p:a xmlns:p="urn:x"><p:b/></p:a>`,
			actual:   `<q:a xmlns:q="urn:x"><q:b/></q:a>`,
		},
		{
			name:     "attribute prefixes resolve to the same URI",
			expected: `<r xmlns:p="urn:x" p:x="1"/>`,
			actual:   `<r xmlns:q="urn:x" q:x="1"/>`,
		},
		{
			name:     "trailing whitespace after root",
			expected: `<a/>`,
			actual:   "<a/>\n  ",
		},
		{
			name:     "xml declaration ignored",
			expected: `<?xml version="1.0"?><a/>`,
			actual:   `<a/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diffs, err := XMLDiff(tt.expected, tt.actual)
			require.NoError(t, err)
			assert.Empty(t, diffs)
		})
	}
}

func TestXMLDiff_Differences(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		wantPath string
	}{
		{
			name:     "text differs",
			expected: `<a><b>1</b></a>`,
			actual:   `<a><b>2</b></a>`,
			wantPath: "/a/b[1]",
		},
		{
			name:     "element name differs",
			expected: `<a><b/></a>`,
			actual:   `<a><c/></a>`,
			wantPath: "/a/b[1]",
		},
		{
			name:     "attribute value differs",
			expected: `<a x="1"/>`,
			actual:   `<a x="2"/>`,
			wantPath: "/a/@x",
		},
		{
			name:     "missing child",
			expected: `<a><b/><c/></a>`,
			actual:   `<a><b/></a>`,
			wantPath: "/a",
		},
		{
			name:     "attribute namespace differs",
			expected: `<r xmlns:p="urn:x" p:x="1"/>`,
			actual:   `<r xmlns:p="urn:y" p:x="1"/>`,
			wantPath: "/r/@{urn:x}x",
		},
		{
			name:     "child order matters",
			expected: `<a><b/><c/></a>`,
			actual:   `<a><c/><b/></a>`,
			wantPath: "/a/b[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diffs, err := XMLDiff(tt.expected, tt.actual)
			require.NoError(t, err)
			require.NotEmpty(t, diffs)
			assert.Equal(t, tt.wantPath, diffs[0].Path)
		})
	}
}

func TestXMLDiff_ParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		side     Side
	}{
		{name: "malformed expected", expected: `<a><b></a>`, actual: `<a/>`, side: SideExpected},
		{name: "plain text actual", expected: `<a/>`, actual: `Hello`, side: SideActual},
		{name: "unclosed actual", expected: `<a/>`, actual: `<a>`, side: SideActual},
		{name: "second root actual", expected: `<a/>`, actual: `<a/><b/>`, side: SideActual},
		{name: "repeated root actual", expected: `<a>1</a>`, actual: `<a>1</a><a>2</a>`, side: SideActual},
		{name: "trailing text actual", expected: `<a/>`, actual: `<a/>trailing junk`, side: SideActual},
		{name: "second root expected", expected: `<a/><b/>`, actual: `<a/>`, side: SideExpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := XMLDiff(tt.expected, tt.actual)
			require.ErrorIs(t, err, ErrParse)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "XML", pe.Format)
			assert.Equal(t, tt.side, pe.Side)
		})
	}
}
