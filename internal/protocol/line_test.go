package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	line := Encode("join", "cluster-a")
	if string(line) != "join cluster-a" {
		t.Fatalf("unexpected encoding: %q", string(line))
	}
	msg, err := Decode(line, DefaultLimits())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Verb != "join" || len(msg.Args) != 1 || msg.Args[0] != "cluster-a" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestEncodeNoTrailingDelimiter(t *testing.T) {
	if got := string(Encode("leave", "g1")); got != "leave g1" {
		t.Fatalf("unexpected encoding: %q", got)
	}
	if got := string(Encode("setup", "prog", "2")); got != "setup prog 2" {
		t.Fatalf("unexpected encoding: %q", got)
	}
}

func TestDecodeEmptyLineIsMalformed(t *testing.T) {
	if _, err := Decode(nil, DefaultLimits()); !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected ErrMalformedMessage, got %v", err)
	}
	if _, err := Decode([]byte{}, DefaultLimits()); !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected ErrMalformedMessage, got %v", err)
	}
}

func TestDecodeEmptyTokenIsMalformed(t *testing.T) {
	for _, line := range []string{"join  g1", " join g1", "join g1 "} {
		if _, err := Decode([]byte(line), DefaultLimits()); !errors.Is(err, ErrMalformedMessage) {
			t.Fatalf("line %q: expected ErrMalformedMessage, got %v", line, err)
		}
	}
}

func TestDecodeNulTerminatesTokenization(t *testing.T) {
	msg, err := Decode([]byte("stop g1\x00trailing garbage"), DefaultLimits())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Verb != "stop" || len(msg.Args) != 1 || msg.Args[0] != "g1" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestDecodeEnforcesArgLimit(t *testing.T) {
	limits := Limits{MaxArgs: 3, MaxLineBytes: 4096}
	if _, err := Decode([]byte("start g1 7 42"), limits); err != nil {
		t.Fatalf("at-limit decode: %v", err)
	}
	_, err := Decode([]byte("start g1 7 42 10"), limits)
	if !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected ErrMalformedMessage, got %v", err)
	}
}

func TestDecodeEnforcesLineLimit(t *testing.T) {
	limits := Limits{MaxArgs: 100, MaxLineBytes: 16}
	line := []byte("start " + strings.Repeat("a", 32))
	if _, err := Decode(line, limits); !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected ErrMalformedMessage, got %v", err)
	}
}

func TestWriteLineReadMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLine(&buf, DoneCommand("g1", 42)); err != nil {
		t.Fatalf("write line: %v", err)
	}
	if buf.String() != "done g1 42\n" {
		t.Fatalf("unexpected framed bytes: %q", buf.String())
	}
	msg, err := ReadMessage(bufio.NewReader(&buf), DefaultLimits())
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if msg.Verb != "done" || len(msg.Args) != 2 || msg.Args[0] != "g1" || msg.Args[1] != "42" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

// floodReader streams an endless unterminated line and counts what is read
// off it.
type floodReader struct {
	n int
}

func (f *floodReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'a'
	}
	f.n += len(p)
	return len(p), nil
}

func TestReadMessageBoundsUnterminatedLine(t *testing.T) {
	src := &floodReader{}
	r := bufio.NewReader(src)
	_, err := ReadMessage(r, Limits{MaxArgs: 100, MaxLineBytes: 16})
	if !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected ErrMalformedMessage, got %v", err)
	}
	// One internal buffer fill is the most the read path may consume for a
	// 16 byte limit.
	if src.n > 8192 {
		t.Fatalf("read path consumed %d bytes", src.n)
	}
}

func TestReadMessageAcceptsLineSpanningBufferFills(t *testing.T) {
	arg := strings.Repeat("a", 10*1024)
	r := bufio.NewReader(strings.NewReader("join " + arg + "\n"))
	msg, err := ReadMessage(r, Limits{MaxArgs: 100, MaxLineBytes: 16 * 1024})
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if msg.Verb != "join" || len(msg.Args) != 1 || msg.Args[0] != arg {
		t.Fatalf("unexpected message verb=%q args=%d", msg.Verb, len(msg.Args))
	}
}

func TestReadMessageEOFBeforeAnyByte(t *testing.T) {
	_, err := ReadMessage(bufio.NewReader(bytes.NewReader(nil)), DefaultLimits())
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestReadMessageTruncatedLineIsMalformed(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("stop g1"))
	_, err := ReadMessage(r, DefaultLimits())
	if !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected ErrMalformedMessage, got %v", err)
	}
}

func TestParseIntStrict(t *testing.T) {
	v, err := ParseInt("42")
	if err != nil || v != 42 {
		t.Fatalf("parse 42: v=%d err=%v", v, err)
	}
	if v, err = ParseInt("-7"); err != nil || v != -7 {
		t.Fatalf("parse -7: v=%d err=%v", v, err)
	}
	for _, tok := range []string{"", "4.2", "0x10", "42 ", "abc"} {
		if _, err := ParseInt(tok); !errors.Is(err, ErrProtocolViolation) {
			t.Fatalf("token %q: expected ErrProtocolViolation, got %v", tok, err)
		}
	}
}
