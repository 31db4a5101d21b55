package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heretounderstand/ndole/internal/model"
)

func TestContextFromChunks(t *testing.T) {
	chunks := []model.Chunk{
		{Page: 3, Position: 0, Text: "Newton's first law."},
		{Page: 1, Position: 2, Text: "An object in motion."},
	}

	got := ContextFromChunks(chunks, 0)

	want := "Page 3, Position 0: Newton's first law.\n\n---\n\nPage 1, Position 2: An object in motion."
	assert.Equal(t, want, got, "chunks stay in ranked order, not page order")
}

func TestContextFromChunksCapsAtMax(t *testing.T) {
	chunks := []model.Chunk{
		{Page: 1, Position: 0, Text: "first"},
		{Page: 1, Position: 1, Text: "second"},
		{Page: 1, Position: 2, Text: "third"},
	}

	got := ContextFromChunks(chunks, 2)

	assert.Contains(t, got, "first")
	assert.Contains(t, got, "second")
	assert.NotContains(t, got, "third")
	assert.Equal(t, 1, strings.Count(got, "\n\n---\n\n"))
}

func TestContextFromChunksEmpty(t *testing.T) {
	assert.Empty(t, ContextFromChunks(nil, 0))
	assert.Empty(t, ContextFromChunks([]model.Chunk{}, 10))
}

func TestFormatQAPrompt(t *testing.T) {
	out, err := FormatQAPrompt(context.Background(), "Page 1, Position 0: gravity", "What is gravity?")
	require.NoError(t, err)

	assert.Contains(t, out, "Page 1, Position 0: gravity")
	assert.Contains(t, out, "User question: What is gravity?")
}

func TestFormatCoursePrompt(t *testing.T) {
	out, err := FormatCoursePrompt(context.Background(), "some context", "Linear Algebra")
	require.NoError(t, err)

	assert.Contains(t, out, "Course topic: Linear Algebra")
	assert.Contains(t, out, "some context")
}

func TestFormatExercisePrompt(t *testing.T) {
	out, err := FormatExercisePrompt(context.Background(), "ctx", "Trigonometry basics", 5)
	require.NoError(t, err)

	assert.Contains(t, out, "Generate exactly 5 questions")
	assert.Contains(t, out, "Exercise request: Trigonometry basics")
	assert.Contains(t, out, "<answer>X</answer>")
}
