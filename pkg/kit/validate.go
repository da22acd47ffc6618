package kit

import (
	"sort"
	"strings"
)

// ValidationError lists offending request fields. It is the details payload
// of every 400 "validation failed" response.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, f := range names {
		parts[i] = f + ": " + e.Fields[f]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Checker collects field problems for a single request.
type Checker struct {
	fields map[string]string
}

// Required flags name when value is blank and returns value unchanged.
// Blankness ignores surrounding whitespace; the value itself is opaque.
func (c *Checker) Required(name, value string) string {
	if strings.TrimSpace(value) == "" {
		if c.fields == nil {
			c.fields = map[string]string{}
		}
		c.fields[name] = "required"
	}
	return value
}

// Err returns a *ValidationError when any field was flagged.
func (c *Checker) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}
