// Package jsonl decodes connector protocol output, one JSON message per line,
// into domain messages for the stream status tracker.
//
// Only the fields the tracker needs are decoded. Record payloads and state
// blobs are skipped, and lines that are not protocol messages are surfaced as
// domain.OtherMessage so a noisy connector cannot fail a sync.
package jsonl
