package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Limits constrains line decode memory use.
type Limits struct {
	MaxArgs      int
	MaxLineBytes int
}

func DefaultLimits() Limits {
	return Limits{
		MaxArgs:      100,
		MaxLineBytes: 4 * 1024,
	}
}

// Message is one decoded wire line.
type Message struct {
	Verb string
	Args []string
}

// Encode renders verb and args joined by single spaces, with no trailing
// delimiter. Framing is applied by WriteLine, not here.
func Encode(verb string, args ...string) []byte {
	var b strings.Builder
	b.WriteString(verb)
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	return []byte(b.String())
}

// Decode splits one unframed line into a verb and ordered argument tokens.
// A NUL byte terminates tokenization; everything after it is ignored.
func Decode(line []byte, limits Limits) (Message, error) {
	if limits.MaxLineBytes > 0 && len(line) > limits.MaxLineBytes {
		return Message{}, fmt.Errorf("%w: line exceeds %d bytes", ErrMalformedMessage, limits.MaxLineBytes)
	}
	if i := bytes.IndexByte(line, 0); i >= 0 {
		line = line[:i]
	}
	if len(line) == 0 {
		return Message{}, fmt.Errorf("%w: empty line", ErrMalformedMessage)
	}

	tokens := strings.Split(string(line), " ")
	for i, tok := range tokens {
		if tok == "" {
			return Message{}, fmt.Errorf("%w: empty token at position %d", ErrMalformedMessage, i)
		}
	}
	args := tokens[1:]
	if limits.MaxArgs > 0 && len(args) > limits.MaxArgs {
		return Message{}, fmt.Errorf("%w: %d arguments exceeds limit %d", ErrMalformedMessage, len(args), limits.MaxArgs)
	}
	return Message{Verb: tokens[0], Args: args}, nil
}

// WriteLine frames one encoded line with a trailing LF and writes it as a
// single Write call.
func WriteLine(w io.Writer, line []byte) error {
	framed := make([]byte, 0, len(line)+1)
	framed = append(framed, line...)
	framed = append(framed, '\n')
	_, err := w.Write(framed)
	return err
}

// ReadMessage reads one LF-terminated line from r and decodes it. An EOF
// before any byte is returned as io.EOF so callers can distinguish a closed
// peer from a grammar failure; an EOF mid-line is a malformed message.
//
// MaxLineBytes bounds the read itself, not just the decode: a peer streaming
// an unterminated line is rejected as soon as the consumed bytes exceed the
// limit, without the oversized payload being retained.
func ReadMessage(r *bufio.Reader, limits Limits) (Message, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		// +1 allows the LF itself on an at-limit line.
		if limits.MaxLineBytes > 0 && len(line)+len(chunk) > limits.MaxLineBytes+1 {
			return Message{}, fmt.Errorf("%w: line exceeds %d bytes", ErrMalformedMessage, limits.MaxLineBytes)
		}
		line = append(line, chunk...)
		switch {
		case err == nil:
			return Decode(line[:len(line)-1], limits)
		case errors.Is(err, bufio.ErrBufferFull):
			// delimiter not reached yet, keep draining
		case errors.Is(err, io.EOF):
			if len(line) == 0 {
				return Message{}, io.EOF
			}
			return Message{}, fmt.Errorf("%w: truncated line", ErrMalformedMessage)
		default:
			return Message{}, err
		}
	}
}

// ParseInt parses a strict base-10 integer token. A non-numeric token where
// an integer is expected is a protocol violation, never a silent zero.
func ParseInt(tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: expected integer, got %q", ErrProtocolViolation, tok)
	}
	return v, nil
}
