// Package coordsim is an in-process group coordinator: the protocol peer a
// grouplink session talks to. It tracks per-group membership, assigns group
// and node identifiers, sequences membership events, and emits the inbound
// half of the wire grammar. It exists for tests and local development; it
// implements the coordinator's wire contract, not its consensus.
package coordsim

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/grouplink/internal/protocol"
)

type Config struct {
	Network string
	Address string
	Limits  protocol.Limits
	// WriteTimeout bounds each event write so one stalled member cannot
	// wedge fan-out to the rest.
	WriteTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Network == "" {
		c.Network = "unix"
	}
	if c.Address == "" {
		c.Address = "@grouplink"
	}
	if c.Limits.MaxArgs == 0 {
		c.Limits.MaxArgs = protocol.DefaultLimits().MaxArgs
	}
	if c.Limits.MaxLineBytes == 0 {
		c.Limits.MaxLineBytes = protocol.DefaultLimits().MaxLineBytes
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 2 * time.Second
	}
	return c
}

// member is one registered client connection.
type member struct {
	id           string
	nodeID       int
	prog         string
	level        int
	conn         net.Conn
	wmu          sync.Mutex
	writeTimeout time.Duration
}

func (m *member) sendLine(line []byte) {
	m.wmu.Lock()
	defer m.wmu.Unlock()
	if m.writeTimeout > 0 {
		_ = m.conn.SetWriteDeadline(time.Now().Add(m.writeTimeout))
	}
	if err := protocol.WriteLine(m.conn, line); err != nil {
		log.Debug().Str("conn", m.id).Err(err).Msg("coordsim event write dropped")
	}
}

type groupState struct {
	name     string
	id       int
	eventSeq int
	members  []*member
	// pending tracks, per event number, the members that have not yet
	// confirmed done.
	pending map[int]map[*member]bool
}

// Server speaks the coordinator side of the grouplink wire protocol.
type Server struct {
	cfg Config
	ln  net.Listener

	mu          sync.Mutex
	groups      map[string]*groupState
	conns       map[*member]struct{}
	nextGroupID int
	nextNodeID  int
}

func New(cfg Config) *Server {
	return &Server{
		cfg:    cfg.withDefaults(),
		groups: make(map[string]*groupState),
		conns:  make(map[*member]struct{}),
	}
}

// Listen binds the configured endpoint. Split from Serve so callers binding
// port zero can read Addr before serving.
func (s *Server) Listen() error {
	ln, err := net.Listen(s.cfg.Network, s.cfg.Address)
	if err != nil {
		return fmt.Errorf("coordsim: listen %s %s: %w", s.cfg.Network, s.cfg.Address, err)
	}
	s.ln = ln
	return nil
}

func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts member connections until the listener closes.
func (s *Server) Serve() error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	log.Info().Str("addr", s.ln.Addr().String()).Msg("coordsim listening")
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) Close() error {
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	s.mu.Lock()
	for m := range s.conns {
		_ = m.conn.Close()
	}
	s.mu.Unlock()
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	m := &member{id: uuid.NewString(), conn: conn, writeTimeout: s.cfg.WriteTimeout}
	logger := log.With().Str("conn", m.id).Logger()
	logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("member connected")

	defer func() {
		s.dropMember(m)
		_ = conn.Close()
		logger.Debug().Msg("member disconnected")
	}()

	s.mu.Lock()
	s.conns[m] = struct{}{}
	s.mu.Unlock()

	reader := bufio.NewReader(conn)
	registered := false
	for {
		msg, err := protocol.ReadMessage(reader, s.cfg.Limits)
		if err != nil {
			logger.Debug().Err(err).Msg("member read ended")
			return
		}
		if !registered && msg.Verb != protocol.VerbSetup {
			logger.Warn().Str("verb", msg.Verb).Msg("command before setup")
			return
		}
		switch msg.Verb {
		case protocol.VerbSetup:
			if len(msg.Args) != 2 {
				logger.Warn().Msg("malformed setup")
				return
			}
			level, err := protocol.ParseInt(msg.Args[1])
			if err != nil {
				logger.Warn().Err(err).Msg("malformed setup level")
				return
			}
			s.register(m, msg.Args[0], level)
			registered = true
			logger.Debug().Str("program", m.prog).Int("node_id", m.nodeID).Msg("member registered")

		case protocol.VerbJoin:
			if len(msg.Args) != 1 {
				logger.Warn().Msg("malformed join")
				return
			}
			s.join(m, msg.Args[0])

		case protocol.VerbLeave:
			if len(msg.Args) != 1 {
				logger.Warn().Msg("malformed leave")
				return
			}
			s.leave(m, msg.Args[0])

		case protocol.VerbDone:
			if len(msg.Args) != 2 {
				logger.Warn().Msg("malformed done")
				return
			}
			eventNr, err := protocol.ParseInt(msg.Args[1])
			if err != nil {
				logger.Warn().Err(err).Msg("malformed done event number")
				return
			}
			s.confirmDone(m, msg.Args[0], eventNr)

		default:
			logger.Warn().Str("verb", msg.Verb).Msg("unknown command verb")
			return
		}
	}
}

func (s *Server) register(m *member, prog string, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNodeID++
	m.nodeID = s.nextNodeID
	m.prog = prog
	m.level = level
}

func (s *Server) join(m *member, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.groups[name]
	if g == nil {
		s.nextGroupID++
		g = &groupState{
			name:    name,
			id:      s.nextGroupID,
			pending: make(map[int]map[*member]bool),
		}
		s.groups[name] = g
	}
	for _, existing := range g.members {
		if existing == m {
			log.Debug().Str("group", name).Int("node_id", m.nodeID).Msg("duplicate join ignored")
			return
		}
	}
	g.members = append(g.members, m)
	m.sendLine(protocol.Encode(protocol.VerbSetID, name, strconv.Itoa(g.id)))
	s.broadcastChange(g)
}

func (s *Server) leave(m *member, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.groups[name]
	if g == nil || !removeMember(g, m) {
		log.Debug().Str("group", name).Msg("leave for unknown membership ignored")
		return
	}
	m.sendLine(protocol.Encode(protocol.VerbTerminate, name))
	if len(g.members) == 0 {
		delete(s.groups, name)
		return
	}
	s.broadcastChange(g)
}

func (s *Server) confirmDone(m *member, name string, eventNr int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.groups[name]
	if g == nil {
		return
	}
	waiting := g.pending[eventNr]
	if waiting == nil || !waiting[m] {
		return
	}
	delete(waiting, m)
	if len(waiting) > 0 {
		return
	}
	delete(g.pending, eventNr)
	line := protocol.Encode(protocol.VerbFinish, name, strconv.Itoa(eventNr))
	for _, member := range g.members {
		member.sendLine(line)
	}
}

func (s *Server) dropMember(m *member) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conns, m)
	for name, g := range s.groups {
		if !removeMember(g, m) {
			continue
		}
		if len(g.members) == 0 {
			delete(s.groups, name)
			continue
		}
		s.broadcastChange(g)
	}
}

// broadcastChange sequences one membership transition: every current member
// is stopped, then started with the new view. Callers hold s.mu.
func (s *Server) broadcastChange(g *groupState) {
	g.eventSeq++
	eventNr := g.eventSeq

	waiting := make(map[*member]bool, len(g.members))
	ids := make([]string, 0, len(g.members)+3)
	ids = append(ids, g.name, strconv.Itoa(len(g.members)), strconv.Itoa(eventNr))
	for _, member := range g.members {
		waiting[member] = true
		ids = append(ids, strconv.Itoa(member.nodeID))
	}
	g.pending[eventNr] = waiting

	stop := protocol.Encode(protocol.VerbStop, g.name)
	start := protocol.Encode(protocol.VerbStart, ids...)
	for _, member := range g.members {
		member.sendLine(stop)
	}
	for _, member := range g.members {
		member.sendLine(start)
	}
	log.Debug().
		Str("group", g.name).
		Int("event", eventNr).
		Int("members", len(g.members)).
		Msg("membership change broadcast")
}

func removeMember(g *groupState, m *member) bool {
	for i, existing := range g.members {
		if existing != m {
			continue
		}
		g.members = append(g.members[:i], g.members[i+1:]...)
		for _, waiting := range g.pending {
			delete(waiting, m)
		}
		return true
	}
	return false
}

// Inject writes a raw protocol line to every member of a group. Tests use
// it to push events the simulator does not emit on its own.
func (s *Server) Inject(group string, line []byte) error {
	s.mu.Lock()
	g, ok := s.groups[group]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("coordsim: inject: unknown group %q", group)
	}
	members := append([]*member(nil), g.members...)
	s.mu.Unlock()

	for _, m := range members {
		m.sendLine(line)
	}
	return nil
}

// MemberInfo is one member in a group snapshot.
type MemberInfo struct {
	NodeID  int    `json:"node_id"`
	Program string `json:"program"`
	Level   int    `json:"level"`
}

// GroupInfo is one group in a snapshot of coordinator state.
type GroupInfo struct {
	Name        string       `json:"name"`
	ID          int          `json:"id"`
	EventNumber int          `json:"event_number"`
	Members     []MemberInfo `json:"members"`
}

// Groups returns a point-in-time snapshot of tracked groups, sorted by name.
func (s *Server) Groups() []GroupInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]GroupInfo, 0, len(s.groups))
	for _, g := range s.groups {
		info := GroupInfo{
			Name:        g.name,
			ID:          g.id,
			EventNumber: g.eventSeq,
			Members:     make([]MemberInfo, 0, len(g.members)),
		}
		for _, m := range g.members {
			info.Members = append(info.Members, MemberInfo{
				NodeID:  m.nodeID,
				Program: m.prog,
				Level:   m.level,
			})
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
