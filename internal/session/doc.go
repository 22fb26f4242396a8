// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session coordinates one streaming conversation: the
// single-flight send/receive cycle, cooperative cancellation, and the
// wiring between the timeline, the suggestion ledger, the undo queue,
// and the follow-up accumulator.
//
// All state mutation happens under the session mutex, triggered either
// by stream event handlers or by explicit user actions (accept, reject,
// undo, edit). Persistence side effects are fire-and-forget: the local
// state is authoritative and a failed backend write is logged, never
// rolled back.
package session
