package protocol

import (
	"errors"
	"testing"
)

func mustDecode(t *testing.T, line string) Message {
	t.Helper()
	msg, err := Decode([]byte(line), DefaultLimits())
	if err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	return msg
}

func TestParseStartEvent(t *testing.T) {
	ev, err := ParseEvent(mustDecode(t, "start g1 7 42 10 11 12"), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ev.Kind != EventStart || ev.Name != "g1" || ev.Value != 7 || ev.EventNumber != 42 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if len(ev.NodeIDs) != 3 || ev.NodeIDs[0] != 10 || ev.NodeIDs[1] != 11 || ev.NodeIDs[2] != 12 {
		t.Fatalf("unexpected node ids: %v", ev.NodeIDs)
	}
}

func TestParseStartEventNoNodeIDs(t *testing.T) {
	ev, err := ParseEvent(mustDecode(t, "start g1 7 42"), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ev.Kind != EventStart || len(ev.NodeIDs) != 0 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestParseStartEventReusesScratch(t *testing.T) {
	scratch := make([]int, 0, 8)
	ev, err := ParseEvent(mustDecode(t, "start g1 7 42 5"), scratch)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if &ev.NodeIDs[0] != &scratch[:1][0] {
		t.Fatalf("node ids did not reuse scratch backing array")
	}
}

func TestParseStopTerminateEvents(t *testing.T) {
	ev, err := ParseEvent(mustDecode(t, "stop g1"), nil)
	if err != nil || ev.Kind != EventStop || ev.Name != "g1" {
		t.Fatalf("stop: ev=%+v err=%v", ev, err)
	}
	ev, err = ParseEvent(mustDecode(t, "terminate g2"), nil)
	if err != nil || ev.Kind != EventTerminate || ev.Name != "g2" {
		t.Fatalf("terminate: ev=%+v err=%v", ev, err)
	}
}

func TestParseFinishEvent(t *testing.T) {
	ev, err := ParseEvent(mustDecode(t, "finish g1 9"), nil)
	if err != nil || ev.Kind != EventFinish || ev.Name != "g1" || ev.EventNumber != 9 {
		t.Fatalf("finish: ev=%+v err=%v", ev, err)
	}
}

func TestParseSetIDEvent(t *testing.T) {
	ev, err := ParseEvent(mustDecode(t, "set_id g1 77"), nil)
	if err != nil || ev.Kind != EventSetID || ev.Name != "g1" || ev.ID != 77 {
		t.Fatalf("set_id: ev=%+v err=%v", ev, err)
	}
}

func TestParseUnknownVerbIsViolation(t *testing.T) {
	_, err := ParseEvent(mustDecode(t, "frobnicate x"), nil)
	if !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("expected ErrProtocolViolation, got %v", err)
	}
}

func TestParseWrongArityIsViolation(t *testing.T) {
	for _, line := range []string{"stop", "stop g1 extra", "finish g1", "set_id g1", "start g1 7"} {
		if _, err := ParseEvent(mustDecode(t, line), nil); !errors.Is(err, ErrProtocolViolation) {
			t.Fatalf("line %q: expected ErrProtocolViolation, got %v", line, err)
		}
	}
}

func TestParseNonIntegerTokenIsViolation(t *testing.T) {
	for _, line := range []string{"start g1 x 42", "start g1 7 x", "start g1 7 42 x", "finish g1 x", "set_id g1 x"} {
		if _, err := ParseEvent(mustDecode(t, line), nil); !errors.Is(err, ErrProtocolViolation) {
			t.Fatalf("line %q: expected ErrProtocolViolation, got %v", line, err)
		}
	}
}
