package repository

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMessagePreviewShortContent(t *testing.T) {
	assert.Equal(t, "Bonjour", messagePreview("Bonjour"))
	assert.Equal(t, "", messagePreview(""))
}

func TestMessagePreviewTruncatesOnRuneBoundary(t *testing.T) {
	// A multi-byte rune straddling the 500-byte mark must not be split.
	content := strings.Repeat("a", 499) + "é et la suite de la réponse"

	preview := messagePreview(content)
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, previewRunes, utf8.RuneCountInString(preview))
	assert.Equal(t, strings.Repeat("a", 499)+"é", preview)
}

func TestMessagePreviewCountsRunesNotBytes(t *testing.T) {
	preview := messagePreview(strings.Repeat("é", 600))
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, previewRunes, utf8.RuneCountInString(preview))
}
