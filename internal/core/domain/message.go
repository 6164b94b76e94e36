package domain

// MessageOrigin identifies which side of the pipeline emitted a message.
type MessageOrigin string

// Message origins.
const (
	OriginSource      MessageOrigin = "SOURCE"
	OriginDestination MessageOrigin = "DESTINATION"
	OriginInternal    MessageOrigin = "INTERNAL"
)

// Message is a protocol message observed during a sync.
//
// The set of implementations is closed: RecordMessage, StateMessage,
// StreamStatusMessage and OtherMessage. Consumers dispatch with an
// exhaustive type switch.
type Message interface {
	// Stream returns the stream the message is scoped to.
	// The second result is false for messages that apply to the whole sync.
	Stream() (StreamKey, bool)

	isMessage()
}

// RecordMessage reports that a record was emitted for a stream.
type RecordMessage struct {
	Descriptor StreamKey
	EmittedAt  int64
}

// Stream implements Message.
func (m RecordMessage) Stream() (StreamKey, bool) { return m.Descriptor, true }

func (RecordMessage) isMessage() {}

// StateType is the scope of a checkpoint.
type StateType string

// Checkpoint scopes.
const (
	StateTypeStream StateType = "STREAM"
	StateTypeGlobal StateType = "GLOBAL"
	StateTypeLegacy StateType = "LEGACY"
)

// StateMessage is a checkpoint marker.
type StateMessage struct {
	// Type is the checkpoint scope.
	Type StateType

	// Descriptor is set for stream-scoped checkpoints.
	Descriptor *StreamKey

	// ID is the monotonically increasing checkpoint id, when present.
	ID *int64
}

// Stream implements Message. Only stream-scoped checkpoints carry a stream.
func (m StateMessage) Stream() (StreamKey, bool) {
	if m.Type != StateTypeStream || m.Descriptor == nil {
		return StreamKey{}, false
	}
	return *m.Descriptor, true
}

func (StateMessage) isMessage() {}

// StreamStatusSignal is a status signal emitted by a source or destination.
type StreamStatusSignal string

// Status signals.
const (
	SignalStarted    StreamStatusSignal = "STARTED"
	SignalRunning    StreamStatusSignal = "RUNNING"
	SignalComplete   StreamStatusSignal = "COMPLETE"
	SignalIncomplete StreamStatusSignal = "INCOMPLETE"
)

// StreamStatusReasonType categorises a status reason.
type StreamStatusReasonType string

// Reason types.
const (
	ReasonRateLimited StreamStatusReasonType = "RATE_LIMITED"
)

// StreamStatusReason annotates a status signal.
type StreamStatusReason struct {
	Type StreamStatusReasonType

	// QuotaReset is populated for RATE_LIMITED reasons.
	QuotaReset *int64
}

// StreamStatusMessage is an explicit status signal for a stream.
type StreamStatusMessage struct {
	Descriptor StreamKey
	Status     StreamStatusSignal
	Reasons    []StreamStatusReason

	// EmittedAt is the epoch millisecond timestamp of the signal.
	EmittedAt int64
}

// Stream implements Message.
func (m StreamStatusMessage) Stream() (StreamKey, bool) { return m.Descriptor, true }

func (StreamStatusMessage) isMessage() {}

// RateLimited reports whether the signal is a RUNNING status carrying a
// rate-limited reason, and returns the metadata derived from that reason.
func (m StreamStatusMessage) RateLimited() (*RateLimitedMetadata, bool) {
	if m.Status != SignalRunning {
		return nil, false
	}
	for _, reason := range m.Reasons {
		if reason.Type != ReasonRateLimited {
			continue
		}
		md := &RateLimitedMetadata{}
		if reason.QuotaReset != nil {
			v := *reason.QuotaReset
			md.QuotaReset = &v
		}
		return md, true
	}
	return nil, false
}

// OtherMessage is any message the tracker does not act on.
type OtherMessage struct {
	// Kind is the protocol type, for logging.
	Kind string

	// Descriptor is set when the message names a stream.
	Descriptor *StreamKey
}

// Stream implements Message.
func (m OtherMessage) Stream() (StreamKey, bool) {
	if m.Descriptor == nil {
		return StreamKey{}, false
	}
	return *m.Descriptor, true
}

func (OtherMessage) isMessage() {}
