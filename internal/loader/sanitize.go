// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// descriptions may keep basic formatting; names are stripped to text
var (
	richTextPolicy  = bluemonday.UGCPolicy()
	plainTextPolicy = bluemonday.StrictPolicy()
)

// sanitizeRichText cleans free-form html from the marketplace so it can
// be stored and later rendered in the shop without script injection
func sanitizeRichText(raw string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(raw))
}

// sanitizeName strips all markup from a single display name
func sanitizeName(raw string) string {
	return strings.TrimSpace(plainTextPolicy.Sanitize(raw))
}

// newlinesToBreaks converts literal newlines into line break tags.
// Supplier descriptions arrive as plain text with newlines; the break
// tags must be in place before sanitizing so the policy can vet them.
func newlinesToBreaks(text string) string {
	return strings.ReplaceAll(text, "\n", "<br>")
}
