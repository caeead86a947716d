package protocol

import "errors"

var (
	ErrMalformedMessage  = errors.New("protocol: malformed message")
	ErrProtocolViolation = errors.New("protocol: protocol violation")
)
