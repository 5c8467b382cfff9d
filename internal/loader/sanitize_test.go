// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeRichTextStripsScripts(t *testing.T) {
	cleaned := sanitizeRichText(`<p>Aged cheese</p><script>alert("x")</script>`)
	require.Equal(t, "<p>Aged cheese</p>", cleaned)
}

func TestSanitizeRichTextKeepsFormatting(t *testing.T) {
	cleaned := sanitizeRichText("<b>Farm</b> raised, <i>grass</i> fed")
	require.Equal(t, "<b>Farm</b> raised, <i>grass</i> fed", cleaned)
}

func TestSanitizeNameStripsAllMarkup(t *testing.T) {
	require.Equal(t, "Hazelnuts", sanitizeName("<b>Hazelnuts</b>"))
	require.Equal(t, "Milk", sanitizeName("Milk<script>alert(1)</script>"))
}

func TestNewlinesToBreaks(t *testing.T) {
	converted := sanitizeRichText(newlinesToBreaks("Our farm.\nSince 1953."))
	require.Equal(t, "Our farm.<br>Since 1953.", converted)
}
