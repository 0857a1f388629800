package config

// File is a decoded plan file.
type File struct {
	// Source is the path the file was loaded from, if any.
	Source string `json:"-" yaml:"-"`

	Server *Server   `json:"server,omitempty" yaml:"server,omitempty"`
	Plan   *PlanSpec `json:"plan" yaml:"plan"`
}

// Server holds spy settings. Durations use time.ParseDuration syntax.
type Server struct {
	Host            string `json:"host,omitempty" yaml:"host,omitempty"`
	Port            int    `json:"port,omitempty" yaml:"port,omitempty"`
	Path            string `json:"path,omitempty" yaml:"path,omitempty"`
	Threads         int    `json:"threads,omitempty" yaml:"threads,omitempty"`
	H2C             bool   `json:"h2c,omitempty" yaml:"h2c,omitempty"`
	ReadTimeout     string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout    string `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
	MaxBodyBytes    int64  `json:"maxBodyBytes,omitempty" yaml:"maxBodyBytes,omitempty"`
}

// Plan kinds.
const (
	KindSequence = "sequence"
	KindStub     = "stub"
)

// PlanSpec describes a Sequence or a Stub.
type PlanSpec struct {
	Kind         string            `json:"kind" yaml:"kind"`
	Expectations []ExpectationSpec `json:"expectations" yaml:"expectations"`
}

// ExpectationSpec pairs a request expectation with its response.
type ExpectationSpec struct {
	// Times repeats the entry in a sequence. Zero means once.
	Times    int           `json:"times,omitempty" yaml:"times,omitempty"`
	Request  *RequestSpec  `json:"request,omitempty" yaml:"request,omitempty"`
	Response *ResponseSpec `json:"response,omitempty" yaml:"response,omitempty"`
}

// RequestSpec describes a request expectation. Absent fields match anything.
type RequestSpec struct {
	Method         *Matcher     `json:"method,omitempty" yaml:"method,omitempty"`
	Path           *Matcher     `json:"path,omitempty" yaml:"path,omitempty"`
	Body           *Matcher     `json:"body,omitempty" yaml:"body,omitempty"`
	Headers        []HeaderSpec `json:"headers,omitempty" yaml:"headers,omitempty"`
	WithoutHeaders []string     `json:"withoutHeaders,omitempty" yaml:"withoutHeaders,omitempty"`
	StrictHeaders  bool         `json:"strictHeaders,omitempty" yaml:"strictHeaders,omitempty"`
}

// HeaderSpec checks one header. Without Value it only requires presence;
// with Index it checks the value at that position.
type HeaderSpec struct {
	Name  string   `json:"name" yaml:"name"`
	Index *int     `json:"index,omitempty" yaml:"index,omitempty"`
	Value *Matcher `json:"value,omitempty" yaml:"value,omitempty"`
}

// ResponseSpec describes a canned response.
type ResponseSpec struct {
	Status  int                 `json:"status,omitempty" yaml:"status,omitempty"`
	Body    string              `json:"body,omitempty" yaml:"body,omitempty"`
	Headers map[string][]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Delay   string              `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// Matcher is a value expectation. Exactly one field is set.
type Matcher struct {
	Equals           *string          `json:"equals,omitempty" yaml:"equals,omitempty"`
	EqualsIgnoreCase *string          `json:"equalsIgnoreCase,omitempty" yaml:"equalsIgnoreCase,omitempty"`
	XML              *string          `json:"xml,omitempty" yaml:"xml,omitempty"`
	JSON             *string          `json:"json,omitempty" yaml:"json,omitempty"`
	Contains         *string          `json:"contains,omitempty" yaml:"contains,omitempty"`
	Prefix           *string          `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Regex            *string          `json:"regex,omitempty" yaml:"regex,omitempty"`
	Glob             *string          `json:"glob,omitempty" yaml:"glob,omitempty"`
	Expr             *string          `json:"expr,omitempty" yaml:"expr,omitempty"`
	JSONPath         *JSONPathMatcher `json:"jsonPath,omitempty" yaml:"jsonPath,omitempty"`
	Not              *Matcher         `json:"not,omitempty" yaml:"not,omitempty"`
	AllOf            []*Matcher       `json:"allOf,omitempty" yaml:"allOf,omitempty"`
	AnyOf            []*Matcher       `json:"anyOf,omitempty" yaml:"anyOf,omitempty"`
	Any              bool             `json:"any,omitempty" yaml:"any,omitempty"`
}

// JSONPathMatcher applies Value to what Path selects. A nil Value only
// requires a selection.
type JSONPathMatcher struct {
	Path  string   `json:"path" yaml:"path"`
	Value *Matcher `json:"value,omitempty" yaml:"value,omitempty"`
}
