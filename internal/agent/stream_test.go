// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

// =============================================================================
// FRAME DECODER TESTS
// =============================================================================

const sampleStream = `data: {"type":"route","target":"intent"}
: keepalive comment
data: {"type":"token","content":"好的"}

data: {"type":"token","content":", starting"}
data: not json at all
data: {"type":"done","message_id":"m1"}
`

func decodeAll(d *FrameDecoder, stream string, chunkSize int) []Event {
	var events []Event
	data := []byte(stream)
	for start := 0; start < len(data); start += chunkSize {
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		events = append(events, d.Feed(data[start:end])...)
	}
	return append(events, d.Flush()...)
}

func TestFrameDecoder_Reassembly(t *testing.T) {
	// Decoding must yield the identical event sequence no matter where the
	// chunk boundaries fall.
	want := decodeAll(NewFrameDecoder(), sampleStream, len(sampleStream))
	if len(want) != 4 {
		t.Fatalf("baseline decoded %d events, want 4", len(want))
	}

	for chunkSize := 1; chunkSize <= 64; chunkSize++ {
		got := decodeAll(NewFrameDecoder(), sampleStream, chunkSize)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("chunk size %d: events diverge from unsplit decode", chunkSize)
		}
	}
}

func TestFrameDecoder_SkipsNoise(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"comment", ": ping\n"},
		{"blank", "\n"},
		{"no prefix", "event: something\n"},
		{"malformed json", "data: {broken\n"},
		{"empty payload", "data: \n"},
		{"done sentinel", "data: [DONE]\n"},
		{"missing type", "data: {\"content\":\"x\"}\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewFrameDecoder()
			if events := d.Feed([]byte(tc.line)); len(events) != 0 {
				t.Errorf("Feed(%q) produced %d events, want 0", tc.line, len(events))
			}
		})
	}
}

func TestFrameDecoder_HoldsPartialLine(t *testing.T) {
	d := NewFrameDecoder()

	if events := d.Feed([]byte(`data: {"type":"tok`)); len(events) != 0 {
		t.Fatal("partial line should not produce events")
	}
	events := d.Feed([]byte("en\",\"content\":\"hi\"}\n"))
	if len(events) != 1 || events[0].Type != EventToken || events[0].Content != "hi" {
		t.Fatalf("completed line decoded to %+v", events)
	}
}

func TestFrameDecoder_CRLF(t *testing.T) {
	d := NewFrameDecoder()
	events := d.Feed([]byte("data: {\"type\":\"route\",\"target\":\"qa\"}\r\n"))
	if len(events) != 1 || events[0].Target != "qa" {
		t.Fatalf("CRLF line decoded to %+v", events)
	}
}

func TestFrameDecoder_FlushFinalLine(t *testing.T) {
	d := NewFrameDecoder()
	d.Feed([]byte(`data: {"type":"done","message_id":"m9"}`))

	events := d.Flush()
	if len(events) != 1 || events[0].MessageID != "m9" {
		t.Fatalf("Flush decoded to %+v", events)
	}
	if again := d.Flush(); len(again) != 0 {
		t.Error("second Flush should produce nothing")
	}
}

// =============================================================================
// STREAM LOOP TESTS
// =============================================================================

func TestDecodeStream_Order(t *testing.T) {
	var types []string
	err := DecodeStream(context.Background(), strings.NewReader(sampleStream), func(ev Event) {
		types = append(types, ev.Type)
	})
	if err != nil {
		t.Fatalf("DecodeStream error: %v", err)
	}

	want := []string{EventRoute, EventToken, EventToken, EventDone}
	if !reflect.DeepEqual(types, want) {
		t.Errorf("event order = %v, want %v", types, want)
	}
}

func TestDecodeStream_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := DecodeStream(ctx, strings.NewReader(sampleStream), func(Event) {
		t.Error("no events expected after cancellation")
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
