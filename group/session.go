package group

import (
	"bufio"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/grouplink/internal/observability"
	"github.com/danmuck/grouplink/internal/protocol"
)

type sessionState int

const (
	stateLive sessionState = iota + 1
	stateClosed
)

// Session is one client connection to the group coordinator. The zero value
// is invalid; use Init. A Session is confined to one goroutine by contract —
// only outbound writes are serialized internally, so partial lines can never
// interleave on the stream.
type Session[T any] struct {
	state sessionState
	cfg   Config
	ctx   T
	cbs   Callbacks[T]
	prog  string
	level int

	conn net.Conn
	r    *bufio.Reader
	wmu  sync.Mutex

	nodeScratch []int
}

// Init dials the coordinator and registers the caller with a setup command.
// The program name is truncated to the wire bound; callers needing exact
// names must pre-validate length. On any failure after the dial the
// connection is closed before returning, so no descriptor leaks.
func Init[T any](ctx T, cfg Config, programName string, level int, cbs Callbacks[T]) (*Session[T], error) {
	if cbs == nil {
		return nil, fmt.Errorf("%w: nil callbacks", ErrInvalidArgument)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prog := protocol.TruncateProgName(programName)

	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	conn, err := dialer.Dial(cfg.Network, cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s %s: %w", ErrTransport, cfg.Network, cfg.Address, err)
	}

	s := &Session[T]{
		state: stateLive,
		cfg:   cfg,
		ctx:   ctx,
		cbs:   cbs,
		prog:  prog,
		level: level,
		conn:  conn,
		r:     bufio.NewReader(conn),
	}
	if err := s.send(protocol.VerbSetup, protocol.SetupCommand(prog, level)); err != nil {
		_ = conn.Close()
		s.state = stateClosed
		return nil, err
	}
	log.Debug().
		Str("program", prog).
		Int("level", level).
		Str("coordinator", cfg.Network+"://"+cfg.Address).
		Msg("group session established")
	return s, nil
}

// Join asks the coordinator to add this member to the named group.
func (s *Session[T]) Join(name string) error {
	if err := s.check(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: empty group name", ErrInvalidArgument)
	}
	return s.send(protocol.VerbJoin, protocol.JoinCommand(name))
}

// Leave asks the coordinator to remove this member from the named group.
func (s *Session[T]) Leave(name string) error {
	if err := s.check(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: empty group name", ErrInvalidArgument)
	}
	return s.send(protocol.VerbLeave, protocol.LeaveCommand(name))
}

// Done confirms this member finished processing the numbered membership
// event for the named group.
func (s *Session[T]) Done(name string, eventNumber int) error {
	if err := s.check(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: empty group name", ErrInvalidArgument)
	}
	return s.send(protocol.VerbDone, protocol.DoneCommand(name, eventNumber))
}

// Exit invalidates the handle first, then releases the connection. The
// handle is dead afterwards even when the close reports an error; any later
// operation, Exit included, fails with ErrInvalidHandle.
func (s *Session[T]) Exit() error {
	if err := s.check(); err != nil {
		return err
	}
	s.state = stateClosed
	err := s.conn.Close()
	log.Debug().Str("program", s.prog).Msg("group session closed")
	if err != nil {
		return fmt.Errorf("%w: close: %w", ErrTransport, err)
	}
	return nil
}

// Conn exposes the underlying transport so callers can run their own
// readiness polling and apply deadlines. The session keeps ownership;
// closing the connection directly instead of calling Exit leaves the handle
// live on a dead stream.
func (s *Session[T]) Conn() (net.Conn, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.conn, nil
}

// Buffered reports bytes already drained off the socket but not yet
// delivered through Dispatch. Poll-driven callers must keep dispatching
// while this is nonzero before blocking on readability again, or buffered
// events sit undelivered.
func (s *Session[T]) Buffered() (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	return s.r.Buffered(), nil
}

func (s *Session[T]) check() error {
	if s == nil || s.state != stateLive {
		return ErrInvalidHandle
	}
	return nil
}

func (s *Session[T]) send(verb string, line []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := protocol.WriteLine(s.conn, line); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrTransport, verb, err)
	}
	observability.RecordCommand(verb)
	return nil
}
