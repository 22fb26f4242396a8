// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package suggest tracks suggestion cards and their lifecycle.
//
// A card is created when the agent proposes an edit mid-stream and is never
// deleted afterwards, only state-transitioned: pending cards are accepted,
// rejected, or superseded; accepted cards may be undone within the undo
// window. The Ledger owns these transitions and the single follow-up source
// pointer that drives supersession. The FollowUpContext accumulator queues
// human-readable lifecycle descriptions for the next outgoing request.
//
// The ledger is local-authoritative: backend persistence of a transition is
// fire-and-forget and its failure never rolls back ledger state.
package suggest
