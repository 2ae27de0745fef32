package manifest

// applyDefaults fills in default values for unset manifest fields.
// Module and Mode are left empty; TestCase resolves them on use so that a
// round-tripped manifest stays identical to its source.
func applyDefaults(m *Manifest) {
	for i := range m.Suites {
		applySuiteDefaults(&m.Suites[i])
	}
}

func applySuiteDefaults(s *Suite) {
	for i := range s.Tests {
		// The runner has always treated an untyped test as a Rust binary.
		if s.Tests[i].Type == "" {
			s.Tests[i].Type = TypeNative
		}
	}
}
