package rotation

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/vietddude/rotor/internal/core/domain"
	"github.com/vietddude/rotor/internal/health"
	"github.com/vietddude/rotor/internal/infra/storage/memory"
	"github.com/vietddude/rotor/internal/infra/vpn"
)

// fakePlane scripts the control plane. Connect outputs are consumed in
// order; the last one repeats.
type fakePlane struct {
	statusOut   string
	statusErr   error
	listOut     string
	listErr     error
	connectOuts []string
	connectIdx  int

	connectCalls []string
	disconnects  int
	restarts     int
}

func (f *fakePlane) Status(ctx context.Context) (string, error) {
	return f.statusOut, f.statusErr
}

func (f *fakePlane) Connect(ctx context.Context, location string) (string, error) {
	f.connectCalls = append(f.connectCalls, location)
	if len(f.connectOuts) == 0 {
		return "", errors.New("no scripted output")
	}
	out := f.connectOuts[f.connectIdx]
	if f.connectIdx < len(f.connectOuts)-1 {
		f.connectIdx++
	}
	return out, nil
}

func (f *fakePlane) Disconnect(ctx context.Context) error {
	f.disconnects++
	return nil
}

func (f *fakePlane) ListLocations(ctx context.Context) (string, error) {
	return f.listOut, f.listErr
}

func (f *fakePlane) RestartDaemon(ctx context.Context) error {
	f.restarts++
	return nil
}

func connectedTo(host string) string {
	return "You are connected to somewhere (" + host + ")!"
}

func newTestController(plane *fakePlane, blocklist *memory.BlockList, maxAttempts int) *Controller {
	log := slog.Default()
	locations := NewLocationCache(plane, "", log)
	resolver := vpn.NewResolver("nordvpn.com")
	return NewController(
		Config{MaxAttempts: maxAttempts},
		plane, blocklist, locations, resolver, log,
	)
}

func TestRotateRecordsCurrentAndConnects(t *testing.T) {
	ctx := context.Background()
	plane := &fakePlane{
		statusOut:   "Status: Connected\nCurrent server: us8821.nordvpn.com",
		listOut:     "Austria, Belgium, Germany",
		connectOuts: []string{connectedTo("de1042.nordvpn.com")},
	}
	blocklist := memory.NewBlockList()
	c := newTestController(plane, blocklist, 20)

	if err := c.Rotate(ctx); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	ok, _ := blocklist.Contains(ctx, "us8821.nordvpn.com")
	if !ok {
		t.Error("abandoned identity was not recorded in the blocklist")
	}
	if plane.disconnects != 1 {
		t.Errorf("disconnects = %d, want 1", plane.disconnects)
	}
	if len(plane.connectCalls) != 1 {
		t.Errorf("connect calls = %d, want 1", len(plane.connectCalls))
	}
}

func TestRotateSkipsBlockedNodes(t *testing.T) {
	ctx := context.Background()
	plane := &fakePlane{
		statusOut: "Status: Disconnected",
		listOut:   "Austria, Belgium",
		connectOuts: []string{
			connectedTo("us8821.nordvpn.com"), // blocked, must be rejected
			connectedTo("de1042.nordvpn.com"),
		},
	}
	blocklist := memory.NewBlockList()
	_ = blocklist.Add(ctx, "us8821.nordvpn.com")
	c := newTestController(plane, blocklist, 20)

	if err := c.Rotate(ctx); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	if len(plane.connectCalls) != 2 {
		t.Errorf("connect calls = %d, want 2", len(plane.connectCalls))
	}
	// The blocked landing triggered an extra disconnect on top of the
	// initial one.
	if plane.disconnects != 2 {
		t.Errorf("disconnects = %d, want 2", plane.disconnects)
	}
}

func TestRotateExhaustionClearsAndAutoConnects(t *testing.T) {
	ctx := context.Background()
	// Every sampled candidate lands on a blocked node; the bound is spent
	// and the ladder clears the blocklist and auto-connects.
	plane := &fakePlane{
		statusOut:   "Status: Disconnected",
		listOut:     "Austria, Belgium",
		connectOuts: []string{connectedTo("us8821.nordvpn.com")},
	}
	blocklist := memory.NewBlockList()
	_ = blocklist.Add(ctx, "us8821.nordvpn.com")
	c := newTestController(plane, blocklist, 20)

	if err := c.Rotate(ctx); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	// 20 bounded attempts plus one unconditional auto-connect.
	if len(plane.connectCalls) != 21 {
		t.Errorf("connect calls = %d, want 21", len(plane.connectCalls))
	}
	if plane.connectCalls[20] != "" {
		t.Errorf("final connect = %q, want auto-connect", plane.connectCalls[20])
	}
	n, _ := blocklist.Size(ctx)
	if n != 0 {
		t.Errorf("blocklist size = %d after escalation, want 0", n)
	}
	if plane.restarts != 0 {
		t.Errorf("restarts = %d, want 0", plane.restarts)
	}
}

func TestRotateEscalationLadderFatal(t *testing.T) {
	ctx := context.Background()
	plane := &fakePlane{
		statusOut:   "Status: Disconnected",
		listOut:     "Austria",
		connectOuts: []string{"Whoops! We couldn't connect you."},
	}
	c := newTestController(plane, memory.NewBlockList(), 5)

	err := c.Rotate(ctx)
	if err == nil {
		t.Fatal("expected fatal error")
	}
	if !domain.IsFatal(err) {
		t.Errorf("error is not fatal: %v", err)
	}
	// 5 bounded attempts, auto-connect, daemon restart, one final
	// auto-connect.
	if len(plane.connectCalls) != 7 {
		t.Errorf("connect calls = %d, want 7", len(plane.connectCalls))
	}
	if plane.restarts != 1 {
		t.Errorf("restarts = %d, want 1", plane.restarts)
	}
}

func TestRotateEmptyLocationListIsFatal(t *testing.T) {
	ctx := context.Background()
	plane := &fakePlane{
		statusOut: "Status: Disconnected",
		listOut:   "A new version is available! Please update.",
	}
	c := newTestController(plane, memory.NewBlockList(), 20)

	err := c.Rotate(ctx)
	if err == nil || !domain.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if len(plane.connectCalls) != 0 {
		t.Errorf("connect calls = %d, want 0", len(plane.connectCalls))
	}
}

func TestRotateAcceptsUnresolvedIdentity(t *testing.T) {
	ctx := context.Background()
	plane := &fakePlane{
		statusOut:   "Status: Disconnected",
		listOut:     "Austria, Belgium",
		connectOuts: []string{"You are connected to somewhere mysterious"},
	}
	blocklist := memory.NewBlockList()
	c := newTestController(plane, blocklist, 20)

	if err := c.Rotate(ctx); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	if len(plane.connectCalls) != 1 {
		t.Errorf("connect calls = %d, want 1", len(plane.connectCalls))
	}
	n, _ := blocklist.Size(ctx)
	if n != 0 {
		t.Errorf("blocklist size = %d, want 0", n)
	}
}

func TestRotateNeverAcceptsBlockedHost(t *testing.T) {
	ctx := context.Background()
	blocklist := memory.NewBlockList()
	hosts := []string{"a1.nordvpn.com", "b2.nordvpn.com", "c3.nordvpn.com"}
	outs := make([]string, len(hosts))
	for i, h := range hosts {
		outs[i] = connectedTo(h)
	}

	// Block all but the last; whatever Rotate accepts must be outside the
	// blocklist.
	for _, h := range hosts[:2] {
		_ = blocklist.Add(ctx, h)
	}
	plane := &fakePlane{
		statusOut:   "Status: Disconnected",
		listOut:     "Austria",
		connectOuts: outs,
	}
	c := newTestController(plane, blocklist, 20)

	if err := c.Rotate(ctx); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if len(plane.connectCalls) != 3 {
		t.Errorf("connect calls = %d, want 3", len(plane.connectCalls))
	}
}

func TestRotateCancelledContextStopsBeforeEscalation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context makes every connect fail; that must end the
	// rotation, not spend the bound and climb the ladder.
	plane := &fakePlane{
		statusOut:   "Status: Disconnected",
		listOut:     "Austria",
		connectOuts: []string{"Whoops! We couldn't connect you."},
	}
	blocklist := memory.NewBlockList()
	_ = blocklist.Add(context.Background(), "us8821.nordvpn.com")
	c := newTestController(plane, blocklist, 20)

	err := c.Rotate(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if domain.IsFatal(err) {
		t.Error("cancellation must not report an infrastructure failure")
	}
	if len(plane.connectCalls) != 0 {
		t.Errorf("connect calls = %d, want 0", len(plane.connectCalls))
	}
	if plane.restarts != 0 {
		t.Errorf("restarts = %d, want 0", plane.restarts)
	}
	n, _ := blocklist.Size(context.Background())
	if n != 1 {
		t.Errorf("blocklist size = %d, want 1 (cancellation must not clear it)", n)
	}
}

func TestRotateUpdatesMonitor(t *testing.T) {
	ctx := context.Background()
	plane := &fakePlane{
		statusOut:   "Status: Connected\nCurrent server: us8821.nordvpn.com",
		listOut:     "Austria, Belgium",
		connectOuts: []string{connectedTo("de1042.nordvpn.com")},
	}
	blocklist := memory.NewBlockList()
	c := newTestController(plane, blocklist, 20)
	mon := health.NewMonitor()
	c.SetMonitor(mon)

	if err := c.Rotate(ctx); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	st := mon.Snapshot()
	if st.CurrentHost != "de1042.nordvpn.com" {
		t.Errorf("CurrentHost = %q, want de1042.nordvpn.com", st.CurrentHost)
	}
	if st.Rotations != 1 {
		t.Errorf("Rotations = %d, want 1", st.Rotations)
	}
	if st.BlocklistSize != 1 {
		t.Errorf("BlocklistSize = %d, want 1", st.BlocklistSize)
	}
}
