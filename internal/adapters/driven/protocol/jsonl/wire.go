package jsonl

// Wire shapes of the protocol messages. Fields the tracker ignores are omitted.

type wireMessage struct {
	Type   string      `json:"type"`
	Record *wireRecord `json:"record,omitempty"`
	State  *wireState  `json:"state,omitempty"`
	Trace  *wireTrace  `json:"trace,omitempty"`
}

type wireDescriptor struct {
	Name      string  `json:"name"`
	Namespace *string `json:"namespace,omitempty"`
}

type wireRecord struct {
	Stream    string  `json:"stream"`
	Namespace *string `json:"namespace,omitempty"`
	EmittedAt int64   `json:"emitted_at"`
}

type wireStreamState struct {
	StreamDescriptor *wireDescriptor `json:"stream_descriptor,omitempty"`
}

type wireState struct {
	Type   string           `json:"type,omitempty"`
	Stream *wireStreamState `json:"stream,omitempty"`
	ID     *int64           `json:"id,omitempty"`
}

type wireRateLimited struct {
	QuotaReset *int64 `json:"quota_reset,omitempty"`
}

type wireStatusReason struct {
	Type        string           `json:"type"`
	RateLimited *wireRateLimited `json:"rate_limited,omitempty"`
}

type wireStreamStatus struct {
	StreamDescriptor *wireDescriptor    `json:"stream_descriptor,omitempty"`
	Status           string             `json:"status"`
	Reasons          []wireStatusReason `json:"reasons,omitempty"`
}

type wireTrace struct {
	Type         string            `json:"type"`
	EmittedAt    float64           `json:"emitted_at"`
	StreamStatus *wireStreamStatus `json:"stream_status,omitempty"`
}
