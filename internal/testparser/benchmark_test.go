package testparser

import (
	"fmt"
	"strings"
	"testing"
)

func libcModuleOutput(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i%17 == 0 {
			fmt.Fprintf(&sb, "FAIL src/functional/case%d.exe [status 1]\n", i)
		} else {
			fmt.Fprintf(&sb, "PASS src/functional/case%d.exe\n", i)
		}
	}
	return sb.String()
}

// BenchmarkLibcParser benchmarks a module-sized libc-test run.
func BenchmarkLibcParser(b *testing.B) {
	output := libcModuleOutput(500)
	parser := &LibcParser{}
	b.ResetTimer()
	for b.Loop() {
		parser.Parse(output)
	}
}

// BenchmarkCargoParser_Multiple benchmarks the cargo parser with several test binaries.
func BenchmarkCargoParser_Multiple(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString("running 100 tests\n")
		sb.WriteString("test result: ok. 95 passed; 3 failed; 2 ignored; 0 measured; 0 filtered out; finished in 0.5s\n\n")
	}
	output := sb.String()

	parser := &CargoParser{}
	b.ResetTimer()
	for b.Loop() {
		parser.Parse(output)
	}
}

// BenchmarkRegistry_GetParser benchmarks registry lookup.
func BenchmarkRegistry_GetParser(b *testing.B) {
	registry := NewRegistry()
	b.ResetTimer()
	for b.Loop() {
		_ = registry.GetParser("libc")
	}
}
