package requestlog

import "strings"

// Logger is the minimal interface for recording entries.
type Logger interface {
	Log(entry *Entry)
}

// Store is request history that can be queried.
type Store interface {
	Logger

	// Get retrieves an entry by ID, or nil.
	Get(id string) *Entry

	// List returns entries newest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of entries.
	Count() int
}

// Filter defines criteria for listing entries. Zero fields match anything.
type Filter struct {
	Method     string
	PathPrefix string
	Outcome    string
	StatusCode int
	HasError   *bool

	// Limit is the maximum number of entries to return.
	Limit int
	// Offset is the number of entries to skip.
	Offset int
}

// Matches reports whether entry satisfies every criterion of f.
func (f *Filter) Matches(entry *Entry) bool {
	if f == nil {
		return true
	}
	if f.Method != "" && entry.Method != f.Method {
		return false
	}
	if f.PathPrefix != "" && !strings.HasPrefix(entry.Path, f.PathPrefix) {
		return false
	}
	if f.Outcome != "" && !strings.HasPrefix(entry.Outcome, f.Outcome) {
		return false
	}
	if f.StatusCode != 0 && entry.ResponseStatus != f.StatusCode {
		return false
	}
	if f.HasError != nil && *f.HasError != (entry.Error != "") {
		return false
	}
	return true
}
