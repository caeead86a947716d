package group

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/grouplink/internal/observability"
	"github.com/danmuck/grouplink/internal/protocol"
)

// Dispatch reads one event from the coordinator, decodes it, and invokes
// exactly one callback before returning. A decode failure invokes nothing.
// A zero-byte read is reported as ErrConnectionClosed; grammar failures
// surface the protocol sentinels; everything else at the read layer is a
// transport error.
func (s *Session[T]) Dispatch() error {
	if err := s.check(); err != nil {
		return err
	}

	msg, err := protocol.ReadMessage(s.r, s.cfg.Limits)
	if err != nil {
		switch {
		case errors.Is(err, io.EOF):
			observability.RecordDispatchError("closed")
			return ErrConnectionClosed
		case errors.Is(err, protocol.ErrMalformedMessage):
			observability.RecordDispatchError("malformed")
			return err
		default:
			observability.RecordDispatchError("transport")
			return fmt.Errorf("%w: read: %w", ErrTransport, err)
		}
	}

	ev, err := protocol.ParseEvent(msg, s.nodeScratch)
	if err != nil {
		observability.RecordDispatchError("violation")
		log.Warn().Str("verb", msg.Verb).Err(err).Msg("coordinator event rejected")
		return err
	}

	switch ev.Kind {
	case protocol.EventStop:
		s.cbs.OnStop(s.ctx, ev.Name)
	case protocol.EventStart:
		s.cbs.OnStart(s.ctx, ev.Name, ev.Value, ev.EventNumber, ev.NodeIDs)
		// Reclaim the node id storage; the callback contract forbids
		// retaining the slice past the call.
		s.nodeScratch = ev.NodeIDs[:0]
	case protocol.EventFinish:
		s.cbs.OnFinish(s.ctx, ev.Name, ev.EventNumber)
	case protocol.EventTerminate:
		s.cbs.OnTerminate(s.ctx, ev.Name)
	case protocol.EventSetID:
		s.cbs.OnSetID(s.ctx, ev.Name, ev.ID)
	default:
		observability.RecordDispatchError("violation")
		return fmt.Errorf("%w: unhandled event kind %v", protocol.ErrProtocolViolation, ev.Kind)
	}

	observability.RecordEvent(ev.Kind.String())
	log.Debug().Str("kind", ev.Kind.String()).Str("group", ev.Name).Msg("event dispatched")
	return nil
}
