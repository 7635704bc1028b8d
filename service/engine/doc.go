// Package engine applies obligation operations. Every mutating operation
// runs the same pipeline: resolve the actor, take the per-obligation lock,
// reload the snapshot, re-check the permission table, apply the change and
// commit it with a compare-and-swap on the obligation version. Attachments
// are stored before the commit and removed again when the commit fails, so a
// failed operation leaves no trace. A notification is published only after a
// successful commit.
package engine
