package domain

// EgressIdentity describes the node a connection terminated on. Hostname is
// empty when no resolution strategy matched; callers treat that as
// "connected, identity unknown" and skip blocklist bookkeeping.
type EgressIdentity struct {
	Raw      string
	Hostname string
}

// Resolved reports whether a canonical hostname was extracted.
func (id EgressIdentity) Resolved() bool { return id.Hostname != "" }
