package group

import (
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/grouplink/internal/protocol"
)

// Config defines how a session reaches the coordinator.
type Config struct {
	// Network is "unix" or "tcp".
	Network string
	// Address is the coordinator endpoint; a leading '@' selects the
	// abstract unix socket namespace.
	Address        string
	ConnectTimeout time.Duration
	Limits         protocol.Limits
}

// DefaultConfig targets the coordinator's well-known abstract socket.
func DefaultConfig() Config {
	return Config{
		Network:        "unix",
		Address:        "@grouplink",
		ConnectTimeout: 5 * time.Second,
		Limits:         protocol.DefaultLimits(),
	}
}

func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.Network) == "" {
		c.Network = def.Network
	}
	if strings.TrimSpace(c.Address) == "" {
		c.Address = def.Address
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.Limits.MaxArgs == 0 {
		c.Limits.MaxArgs = def.Limits.MaxArgs
	}
	if c.Limits.MaxLineBytes == 0 {
		c.Limits.MaxLineBytes = def.Limits.MaxLineBytes
	}
	return c
}

func (c Config) Validate() error {
	switch c.Network {
	case "unix", "tcp":
	default:
		return fmt.Errorf("%w: unsupported network %q", ErrInvalidArgument, c.Network)
	}
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("%w: missing coordinator address", ErrInvalidArgument)
	}
	return nil
}
