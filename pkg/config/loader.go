package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Common errors for plan file loading.
var (
	ErrFileNotFound     = errors.New("plan file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("plan file is empty")
	ErrSchema           = errors.New("plan file does not match schema")
	ErrInvalidPlanFile  = errors.New("invalid plan file")
	ErrNoFiles          = errors.New("no plan files matched")
)

// LoadFromFile reads a plan file. Files ending in .yaml or .yml are YAML,
// anything else is JSON.
func LoadFromFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	var f *File
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		f, err = ParseYAML(data)
	} else {
		f, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Source = path
	return f, nil
}

// ParseJSON parses and validates a JSON plan file.
func ParseJSON(data []byte) (*File, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseYAML parses and validates a YAML plan file. The document is
// converted to JSON so both formats share one schema.
func ParseYAML(data []byte) (*File, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if doc == nil {
		return nil, ErrEmptyFile
	}
	converted, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return ParseJSON(converted)
}

// Expand resolves paths and doublestar patterns to regular files, in
// match order without duplicates. A pattern matching nothing is an error.
func Expand(patterns ...string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoFiles, pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}

// LoadGlob loads every file matched by the given paths or patterns.
func LoadGlob(patterns ...string) ([]*File, error) {
	paths, err := Expand(patterns...)
	if err != nil {
		return nil, err
	}
	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		f, err := LoadFromFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
