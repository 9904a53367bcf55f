package setup

import "time"

// Actor identifies who ran the installation.
type Actor struct {
	// Hostname is the machine name where setup was run.
	Hostname string
	// Username is the system user who ran setup.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// Receipt records a completed installation.
type Receipt struct {
	// Version is the installed bundle version.
	Version string
	// Archive is the name of the remote archive that was installed.
	Archive string
	// EntryID is the remote file store identifier of the archive.
	EntryID string
	// InstalledAt is when the installation finished.
	InstalledAt time.Time
	// Actor is the user who ran the installation.
	Actor *Actor
	// Schemas is the number of files in the schema directory after the post-step.
	Schemas int
	// Warning holds the post-step failure message, if any.
	Warning string
}

// Clone returns a copy of the receipt to avoid leaking internal references.
func (r *Receipt) Clone() *Receipt {
	cloned := *r
	cloned.Actor = r.Actor.Clone()

	return &cloned
}
