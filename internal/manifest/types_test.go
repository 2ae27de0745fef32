package manifest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTestCase_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		tc         TestCase
		wantModule string
		wantMode   string
	}{
		{"unset", TestCase{Name: "libc", Type: TypeLibc}, "functional", "dynamic"},
		{"explicit", TestCase{Name: "libc", Type: TypeLibc, Module: "regression", Mode: "static"}, "regression", "static"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.tc.ModuleOrDefault(); got != tt.wantModule {
				t.Errorf("ModuleOrDefault() = %q, want %q", got, tt.wantModule)
			}
			if got := tt.tc.ModeOrDefault(); got != tt.wantMode {
				t.Errorf("ModeOrDefault() = %q, want %q", got, tt.wantMode)
			}
		})
	}
}

func TestTestType_Known(t *testing.T) {
	t.Parallel()
	for typ, want := range map[TestType]bool{TypeNative: true, TypeLibc: true, "python": false, "": false} {
		if got := typ.Known(); got != want {
			t.Errorf("TestType(%q).Known() = %v, want %v", typ, got, want)
		}
	}
}

func TestSuite_TestsOfType(t *testing.T) {
	t.Parallel()
	s := Suite{Tests: []TestCase{
		{Name: "a", Type: TypeNative},
		{Name: "b", Type: TypeLibc},
		{Name: "c", Type: TypeNative},
		{Name: "d", Type: "unknown"},
	}}

	got := s.TestsOfType(TypeNative)
	want := []TestCase{{Name: "a", Type: TypeNative}, {Name: "c", Type: TypeNative}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TestsOfType() mismatch (-want +got):\n%s", diff)
	}
}

func TestSuite_IsEnabled(t *testing.T) {
	t.Parallel()
	yes, no := true, false
	for _, tt := range []struct {
		enabled *bool
		want    bool
	}{{nil, true}, {&yes, true}, {&no, false}} {
		s := Suite{Enabled: tt.enabled}
		if got := s.IsEnabled(); got != tt.want {
			t.Errorf("IsEnabled() = %v, want %v", got, tt.want)
		}
	}
}
