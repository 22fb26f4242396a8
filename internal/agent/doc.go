// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent provides the HTTP client for the studio backend.
//
// The backend streams line-delimited events over a chat endpoint; each
// event-bearing line carries the "data: " record prefix with a JSON
// payload. FrameDecoder reassembles events from arbitrarily chunked
// reads and silently drops protocol noise (keepalives, malformed or
// partial records) so transient format glitches never kill a session.
//
// Suggestion confirmation and version rollback are separate, non-streaming
// endpoints on the same backend.
package agent
