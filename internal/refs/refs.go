// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package refs provides the @ mention system for attaching reference
// material to outgoing messages.
package refs

import (
	"regexp"
	"strings"
)

// =============================================================================
// MENTION STRUCT
// =============================================================================

// Mention represents a parsed @ mention in user input.
type Mention struct {
	// Raw is the original text (e.g., "@style-guide")
	Raw string

	// Name is the mention without the @ (e.g., "style-guide")
	Name string

	// ID is the canonical reference id, populated by a Resolver.
	ID string

	// Start and End positions in the original input
	Start int
	End   int
}

// Resolved returns true if the mention maps to a known reference.
func (m *Mention) Resolved() bool {
	return m.ID != ""
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver maps mention names to canonical reference ids. The lookup
// source (project reference list) lives outside this package.
type Resolver interface {
	// ResolveReference returns the canonical id for a mention name,
	// or "" when the name is unknown.
	ResolveReference(name string) string
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) string

func (f ResolverFunc) ResolveReference(name string) string {
	return f(name)
}

// =============================================================================
// PARSER
// =============================================================================

// mentionPattern matches @name mentions. Names may contain letters,
// digits, dots, dashes, underscores and slashes; a bare "@" or an
// email-style "x@y" is not a mention.
var mentionPattern = regexp.MustCompile(`(?:^|\s)(@([\w./-]+))`)

// Parse extracts all mentions from the input, in order of appearance.
func Parse(input string) []Mention {
	matches := mentionPattern.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		return nil
	}

	mentions := make([]Mention, 0, len(matches))
	for _, m := range matches {
		mentions = append(mentions, Mention{
			Raw:   input[m[2]:m[3]],
			Name:  input[m[4]:m[5]],
			Start: m[2],
			End:   m[3],
		})
	}
	return mentions
}

// Resolve parses the input and maps each mention through the resolver,
// returning the canonical ids of every resolvable mention, deduplicated,
// in order of first appearance. Unknown mentions are skipped; they read
// as plain text to the agent.
func Resolve(input string, resolver Resolver) []string {
	if resolver == nil {
		return nil
	}

	var ids []string
	seen := make(map[string]bool)
	for _, m := range Parse(input) {
		id := resolver.ResolveReference(m.Name)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// Strip removes all mentions from the input, collapsing the surrounding
// whitespace. Used when the mention is an attachment marker rather than
// part of the sentence.
func Strip(input string) string {
	out := mentionPattern.ReplaceAllStringFunc(input, func(match string) string {
		if strings.HasPrefix(match, "@") {
			return ""
		}
		// Keep the leading whitespace the pattern consumed.
		return match[:1]
	})
	return strings.Join(strings.Fields(out), " ")
}
