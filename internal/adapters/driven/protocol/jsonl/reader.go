package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
)

// Ensure the reader types implement the interfaces.
var (
	_ driven.MessageReader        = (*Reader)(nil)
	_ driven.MessageReaderFactory = (*ReaderFactory)(nil)
)

// Protocol message and trace type names.
const (
	typeRecord = "RECORD"
	typeState  = "STATE"
	typeTrace  = "TRACE"

	traceStreamStatus = "STREAM_STATUS"

	// KindUnparseable marks lines that are not JSON protocol messages.
	KindUnparseable = "UNPARSEABLE"
)

// MaxLineSize bounds a single protocol message. Records larger than this fail
// the reader.
const MaxLineSize = 64 << 20

// Reader decodes one protocol message per line.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next message, or io.EOF when r is exhausted.
// Blank lines are skipped.
func (r *Reader) Next() (domain.Message, error) {
	for r.scanner.Scan() {
		r.line++
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return Decode(line), nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

// ReaderFactory creates Readers.
type ReaderFactory struct{}

// NewReaderFactory creates a ReaderFactory.
func NewReaderFactory() *ReaderFactory {
	return &ReaderFactory{}
}

// NewReader creates a Reader over r.
func (f *ReaderFactory) NewReader(r io.Reader) driven.MessageReader {
	return NewReader(r)
}

// Decode converts one protocol line into a domain message.
// It never fails: anything it cannot interpret becomes a domain.OtherMessage.
func Decode(line []byte) domain.Message {
	var msg wireMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return domain.OtherMessage{Kind: KindUnparseable}
	}

	switch msg.Type {
	case typeRecord:
		if msg.Record == nil || msg.Record.Stream == "" {
			break
		}
		return domain.RecordMessage{
			Descriptor: domain.NewStreamKey(deref(msg.Record.Namespace), msg.Record.Stream),
			EmittedAt:  msg.Record.EmittedAt,
		}
	case typeState:
		if msg.State == nil {
			break
		}
		return decodeState(msg.State)
	case typeTrace:
		if msg.Trace == nil || msg.Trace.Type != traceStreamStatus || msg.Trace.StreamStatus == nil {
			break
		}
		if status, ok := decodeStreamStatus(msg.Trace); ok {
			return status
		}
	}

	if msg.Type == "" {
		return domain.OtherMessage{Kind: KindUnparseable}
	}
	return domain.OtherMessage{Kind: msg.Type}
}

func decodeState(state *wireState) domain.StateMessage {
	out := domain.StateMessage{ID: state.ID}

	switch domain.StateType(state.Type) {
	case domain.StateTypeStream:
		out.Type = domain.StateTypeStream
		if state.Stream != nil && state.Stream.StreamDescriptor != nil {
			key := descriptorKey(state.Stream.StreamDescriptor)
			out.Descriptor = &key
		}
	case domain.StateTypeGlobal:
		out.Type = domain.StateTypeGlobal
	default:
		// Untyped state predates per-stream state.
		out.Type = domain.StateTypeLegacy
	}
	return out
}

func decodeStreamStatus(trace *wireTrace) (domain.StreamStatusMessage, bool) {
	status := trace.StreamStatus
	if status.StreamDescriptor == nil || status.StreamDescriptor.Name == "" {
		return domain.StreamStatusMessage{}, false
	}

	out := domain.StreamStatusMessage{
		Descriptor: descriptorKey(status.StreamDescriptor),
		Status:     domain.StreamStatusSignal(status.Status),
		EmittedAt:  int64(trace.EmittedAt),
	}
	for _, reason := range status.Reasons {
		r := domain.StreamStatusReason{Type: domain.StreamStatusReasonType(reason.Type)}
		if reason.RateLimited != nil {
			r.QuotaReset = reason.RateLimited.QuotaReset
		}
		out.Reasons = append(out.Reasons, r)
	}
	return out, true
}

func descriptorKey(d *wireDescriptor) domain.StreamKey {
	return domain.NewStreamKey(deref(d.Namespace), d.Name)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
