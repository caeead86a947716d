package group

import "errors"

var (
	// ErrInvalidHandle marks an operation on a nil, zero, or exited session.
	ErrInvalidHandle = errors.New("group: invalid handle")
	// ErrInvalidArgument marks a caller error caught before anything is sent.
	ErrInvalidArgument = errors.New("group: invalid argument")
	// ErrTransport wraps a connect, read, or write failure of the underlying
	// stream; the originating error is preserved in the chain.
	ErrTransport = errors.New("group: transport error")
	// ErrConnectionClosed marks a zero-byte read: the coordinator hung up.
	ErrConnectionClosed = errors.New("group: connection closed by coordinator")
)
