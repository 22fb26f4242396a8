// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// FRAME DECODER
// =============================================================================

// recordPrefix marks event-bearing lines. Lines without it are protocol
// comments or keepalives and are ignored.
const recordPrefix = "data:"

// doneSentinel is a transport-level end marker some proxies inject; it is
// tolerated as a no-op because the done event is the real terminal signal.
const doneSentinel = "[DONE]"

// FrameDecoder reassembles discrete events from a chunked byte stream.
// Event boundaries may be split arbitrarily across chunks: the decoder
// accumulates text, forwards complete lines, and holds back the trailing
// partial line until the next chunk (or Flush) completes it.
//
// Malformed or partial JSON payloads are swallowed silently. Keepalive and
// format noise must not kill the session, so a bad record is dropped and
// decoding continues with the next line.
type FrameDecoder struct {
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	buf strings.Builder
}

// NewFrameDecoder creates an empty decoder.
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{}
}

// Feed appends a chunk and returns every event completed by it, in order.
func (d *FrameDecoder) Feed(chunk []byte) []Event {
	if len(chunk) == 0 {
		return nil
	}
	d.buf.Write(chunk)

	text := d.buf.String()
	lastNL := strings.LastIndexByte(text, '\n')
	if lastNL < 0 {
		return nil
	}

	complete := text[:lastNL]
	d.buf.Reset()
	d.buf.WriteString(text[lastNL+1:])

	var events []Event
	for _, line := range strings.Split(complete, "\n") {
		if ev, ok := decodeLine(line); ok {
			events = append(events, ev)
		}
	}
	return events
}

// Flush decodes whatever remains in the buffer as a final line. Called
// when the stream ends without a trailing newline.
func (d *FrameDecoder) Flush() []Event {
	if d.buf.Len() == 0 {
		return nil
	}
	line := d.buf.String()
	d.buf.Reset()

	if ev, ok := decodeLine(line); ok {
		return []Event{ev}
	}
	return nil
}

// decodeLine parses one complete line into an event. Returns false for
// non-record lines and for payloads that fail to parse.
func decodeLine(line string) (Event, bool) {
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, recordPrefix) {
		return Event{}, false
	}

	payload := strings.TrimSpace(line[len(recordPrefix):])
	if payload == "" || payload == doneSentinel {
		return Event{}, false
	}

	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		// Skip malformed records
		return Event{}, false
	}
	if ev.Type == "" {
		return Event{}, false
	}
	return ev, true
}

// =============================================================================
// STREAM LOOP
// =============================================================================

// EventCallback is called for each decoded event, in arrival order.
type EventCallback func(ev Event)

// readBufferSize is the chunk size for stream reads.
const readBufferSize = 4096

// DecodeStream reads the body to completion, forwarding decoded events to
// the callback. The context is checked between reads; cancellation is
// reported as ctx.Err(), distinct from transport faults.
func DecodeStream(ctx context.Context, body io.Reader, callback EventCallback) error {
	decoder := NewFrameDecoder()
	buf := make([]byte, readBufferSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			for _, ev := range decoder.Feed(buf[:n]) {
				callback(ev)
			}
		}
		if err != nil {
			if err == io.EOF {
				for _, ev := range decoder.Flush() {
					callback(ev)
				}
				return nil
			}
			// A read error racing cancellation is cancellation.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}
