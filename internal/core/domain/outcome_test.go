package domain

import "testing"

func TestClassifyExitCode(t *testing.T) {
	cases := []struct {
		code int
		want Outcome
	}{
		{0, OutcomeSuccess},
		{2, OutcomeBlocked},
		{1, OutcomeTransient},
		{3, OutcomeTransient},
		{127, OutcomeTransient},
		{255, OutcomeTransient},
		{-1, OutcomeTransient},
	}

	for _, tc := range cases {
		if got := ClassifyExitCode(tc.code); got != tc.want {
			t.Errorf("ClassifyExitCode(%d) = %s, want %s", tc.code, got, tc.want)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	if OutcomeSuccess.String() != "success" ||
		OutcomeBlocked.String() != "blocked" ||
		OutcomeTransient.String() != "transient" {
		t.Error("unexpected outcome string representation")
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(Fatalf("control plane returned no locations")) {
		t.Error("Fatalf result should be fatal")
	}
	if !IsFatal(Fatal("refresh locations", Fatalf("inner"))) {
		t.Error("wrapped FatalError should be fatal")
	}
	if IsFatal(nil) {
		t.Error("nil is not fatal")
	}
}
