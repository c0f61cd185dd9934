package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vietddude/rotor/internal/core/domain"
)

func TestJournalRoundTrip(t *testing.T) {
	ctx := context.Background()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer j.Close()

	for i := 1; i <= 3; i++ {
		err := j.RecordAttempt(ctx, domain.AttemptRecord{
			RunID:    "run-1",
			Attempt:  i,
			ExitCode: 2,
			Outcome:  domain.OutcomeBlocked,
			Duration: 1500 * time.Millisecond,
			At:       time.Now(),
		})
		if err != nil {
			t.Fatalf("RecordAttempt failed: %v", err)
		}
	}

	err = j.RecordRotation(ctx, domain.RotationRecord{
		RunID:       "run-1",
		OldHostname: "us8821.nordvpn.com",
		NewHostname: "de1042.nordvpn.com",
		Location:    "Germany",
		Attempts:    1,
		At:          time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordRotation failed: %v", err)
	}

	n, err := j.AttemptCount(ctx, "run-1")
	if err != nil {
		t.Fatalf("AttemptCount failed: %v", err)
	}
	if n != 3 {
		t.Errorf("AttemptCount = %d, want 3", n)
	}

	n, _ = j.AttemptCount(ctx, "run-2")
	if n != 0 {
		t.Errorf("AttemptCount for other run = %d, want 0", n)
	}
}

func TestJournalReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = j.RecordAttempt(ctx, domain.AttemptRecord{RunID: "r", Attempt: 1, At: time.Now()})
	_ = j.Close()

	j2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer j2.Close()
	n, _ := j2.AttemptCount(ctx, "r")
	if n != 1 {
		t.Errorf("AttemptCount after reopen = %d, want 1", n)
	}
}
