// Package vpn adapts the egress provider's command-line control plane.
package vpn

import "context"

// ControlPlane is the capability surface of the egress provider. The host
// has exactly one network identity, so callers never overlap commands;
// implementations do not serialize internally.
type ControlPlane interface {
	// Status returns the raw status output, including the fields that
	// identify the current node when connected.
	Status(ctx context.Context) (string, error)

	// Connect attempts a connection to the given location token and returns
	// the confirmation output. An empty location requests the provider's
	// own best-effort selection.
	Connect(ctx context.Context, location string) (string, error)

	Disconnect(ctx context.Context) error

	// ListLocations returns the provider's location listing, banner noise
	// included.
	ListLocations(ctx context.Context) (string, error)

	// RestartDaemon cycles the background service behind the control plane.
	// Last escalation step only.
	RestartDaemon(ctx context.Context) error
}
