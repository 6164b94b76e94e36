package driven

import (
	"io"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
)

// MessageReader yields protocol messages one at a time.
// Next returns io.EOF once the stream of messages is exhausted.
type MessageReader interface {
	Next() (domain.Message, error)
}

// MessageReaderFactory opens a MessageReader over raw protocol output.
type MessageReaderFactory interface {
	NewReader(r io.Reader) MessageReader
}
