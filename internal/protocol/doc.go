// Package protocol owns the wire contract spoken with the group coordinator.
//
// Ownership boundary:
// - line codec primitives (tokenize, limits)
// - outbound command builders
// - inbound event parsing
//
// Framing: every message is one LF-terminated line of ASCII tokens separated
// by single spaces. The coordinator's historical clients relied on one write
// mapping to one read on a stream socket; that is not a contract a byte
// stream honors, so this codec delimits every message explicitly.
package protocol
