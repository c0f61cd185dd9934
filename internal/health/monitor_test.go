package health

import "testing"

func TestMonitorUpdates(t *testing.T) {
	m := NewMonitor()

	st := m.Snapshot()
	if !st.Healthy || st.Phase != PhaseIdle {
		t.Fatalf("fresh monitor = %+v", st)
	}

	m.SetRunID("run-1")
	m.SetPhase(PhaseRunning)
	m.RecordAttempt("blocked")
	m.RecordAttempt("blocked")
	m.RecordRotation("de1042.nordvpn.com")
	m.SetBlocklistSize(3)

	st = m.Snapshot()
	if st.RunID != "run-1" {
		t.Errorf("RunID = %q", st.RunID)
	}
	if st.Attempts != 2 || st.LastOutcome != "blocked" {
		t.Errorf("Attempts = %d, LastOutcome = %q", st.Attempts, st.LastOutcome)
	}
	if st.Rotations != 1 || st.CurrentHost != "de1042.nordvpn.com" {
		t.Errorf("Rotations = %d, CurrentHost = %q", st.Rotations, st.CurrentHost)
	}
	if st.BlocklistSize != 3 {
		t.Errorf("BlocklistSize = %d", st.BlocklistSize)
	}

	m.SetUnhealthy()
	if m.Snapshot().Healthy {
		t.Error("monitor still healthy after SetUnhealthy")
	}
}
