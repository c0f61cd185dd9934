package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestCommandWorkerExitCodes(t *testing.T) {
	cases := []struct {
		script string
		want   int
	}{
		{"exit 0", 0},
		{"exit 2", 2},
		{"exit 7", 7},
	}

	for _, tc := range cases {
		w := &CommandWorker{Command: "sh", Args: []string{"-c", tc.script}}
		code, err := w.Run(context.Background())
		if err != nil {
			t.Fatalf("Run(%q) failed: %v", tc.script, err)
		}
		if code != tc.want {
			t.Errorf("Run(%q) = %d, want %d", tc.script, code, tc.want)
		}
	}
}

func TestCommandWorkerStartFailure(t *testing.T) {
	w := &CommandWorker{Command: "/nonexistent/definitely-not-a-binary"}
	code, err := w.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for unstartable command")
	}
	if code != -1 {
		t.Errorf("code = %d, want -1", code)
	}
}

func TestCommandWorkerTimeout(t *testing.T) {
	w := &CommandWorker{
		Command: "sh",
		Args:    []string{"-c", "sleep 10"},
		Timeout: 50 * time.Millisecond,
	}
	code, _ := w.Run(context.Background())
	if code == 0 {
		t.Error("timed-out worker reported success")
	}
}
