// Package cli implements the httpspy command line.
//
// httpspy serve runs a spy from a plan file until interrupted, then verifies
// the plan and exits non-zero on failure. httpspy validate checks plan files
// without serving them.
package cli
