package manifest

import (
	"fmt"
)

// ValidationError represents a manifest validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a manifest for errors and returns warnings for non-fatal issues.
// Suite names must be unique in the manifest and test names unique within a
// suite, otherwise results of one test would silently replace another's.
func Validate(m *Manifest, opts LoadOptions) (warnings []string, err error) {
	seenSuites := make(map[string]int, len(m.Suites))
	for i, s := range m.Suites {
		field := fmt.Sprintf("test_suite[%d]", i)
		if s.Name == "" {
			return warnings, &ValidationError{Field: field + ".name", Message: "is required"}
		}
		if prev, ok := seenSuites[s.Name]; ok {
			return warnings, &ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate suite name %q (first defined at test_suite[%d])", s.Name, prev),
			}
		}
		seenSuites[s.Name] = i

		suiteWarnings, err := validateSuite(field, s, opts)
		warnings = append(warnings, suiteWarnings...)
		if err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}

func validateSuite(field string, s Suite, opts LoadOptions) (warnings []string, err error) {
	seenTests := make(map[string]int, len(s.Tests))
	for j, tc := range s.Tests {
		testField := fmt.Sprintf("%s.tests[%d]", field, j)
		if tc.Name == "" {
			return warnings, &ValidationError{Field: testField + ".name", Message: "is required"}
		}
		if prev, ok := seenTests[tc.Name]; ok {
			return warnings, &ValidationError{
				Field:   testField + ".name",
				Message: fmt.Sprintf("duplicate test name %q in suite %q (first defined at tests[%d])", tc.Name, s.Name, prev),
			}
		}
		seenTests[tc.Name] = j

		if !tc.Type.Known() {
			if opts.Strict {
				return warnings, &ValidationError{
					Field:   testField + ".type",
					Message: fmt.Sprintf("unknown test type %q (want %q or %q)", tc.Type, TypeNative, TypeLibc),
				}
			}
			warnings = append(warnings, fmt.Sprintf("test %q in suite %q has unknown type %q; it will be skipped", tc.Name, s.Name, tc.Type))
			continue
		}

		if tc.Type == TypeNative && (tc.Module != "" || tc.Mode != "") {
			warnings = append(warnings, fmt.Sprintf("test %q in suite %q: module and mode only apply to libc tests (ignored)", tc.Name, s.Name))
		}
	}
	return warnings, nil
}
