package starry_test

import (
	"testing"

	"github.com/starry-os/starry-test-harness/internal/errors"
	"github.com/starry-os/starry-test-harness/pkg/starry"
)

// TestExitCodeValues verifies that exit code constants have the values the
// image build scripts depend on.
func TestExitCodeValues(t *testing.T) {
	tests := []struct {
		name     string
		constant int
		expected int
	}{
		{"ExitSuccess", starry.ExitSuccess, 0},
		{"ExitFailure", starry.ExitFailure, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("starry.%s = %d, want %d", tt.name, tt.constant, tt.expected)
			}
		})
	}
}

// TestExitCodeConsistency verifies that public exit code constants match
// the internal errors package constants.
func TestExitCodeConsistency(t *testing.T) {
	tests := []struct {
		name     string
		public   int
		internal int
	}{
		{"Success", starry.ExitSuccess, errors.ExitSuccess},
		{"Failure", starry.ExitFailure, errors.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.public != tt.internal {
				t.Errorf("exit code mismatch: starry constant = %d, errors constant = %d",
					tt.public, tt.internal)
			}
		})
	}
}
