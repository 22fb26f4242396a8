// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation timeline.
//
// The central types are Message, an immutable-position record in the
// timeline, and Timeline, the append-only ordered sequence of messages for
// one conversation. Messages are created with a provisional, client-minted
// id and later reconciled in place to the durable id the backend assigns;
// reconciliation is idempotent so replayed terminal events are harmless.
package model
