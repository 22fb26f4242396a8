// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package undo implements the time-limited undo window for accepted
// suggestions. Tokens queue strictly FIFO; only the head token is
// actionable, and its countdown starts fresh when it reaches the head.
// An expired token is simply dropped, never rolled back.
package undo
