// Package group is the client half of the group coordination protocol.
//
// A Session is one persistent duplex connection to the coordinator. The
// caller issues join/leave/done commands, and drives inbound delivery by
// calling Dispatch whenever the transport is readable; each Dispatch call
// decodes exactly one coordinator event and invokes exactly one callback.
//
// The package runs no event loop, no reconnect, and no retries of its own;
// ordering on both directions is whatever the single stream provides. A
// Session is not safe for concurrent use beyond serialized outbound writes.
package group
