package testparser

import "strings"

// Registry maps manifest test types to their output parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates a registry with the built-in parsers.
func NewRegistry() *Registry {
	r := &Registry{
		parsers: make(map[string]Parser),
	}

	cargo := &CargoParser{}
	libc := &LibcParser{}
	ptest := &PtestParser{}

	r.parsers["rust"] = cargo
	r.parsers["cargo"] = cargo
	r.parsers["native"] = cargo
	r.parsers["libc"] = libc
	r.parsers["libc-test"] = libc
	r.parsers["ptest"] = ptest

	return r
}

// GetParser returns the parser for a test type, or nil if none is known.
func (r *Registry) GetParser(testType string) Parser {
	return r.parsers[strings.ToLower(testType)]
}

// RegisterParser adds or replaces the parser for a test type.
func (r *Registry) RegisterParser(testType string, parser Parser) {
	r.parsers[strings.ToLower(testType)] = parser
}
