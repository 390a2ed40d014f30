package sitedex_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sitedex/sitedex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkMarkdown_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Nil(t, sitedex.ChunkMarkdown("", "Home"))
	assert.Nil(t, sitedex.ChunkMarkdown("   \n\n\t", "Home"))
}

func TestChunkMarkdown_SingleParagraph(t *testing.T) {
	t.Parallel()

	chunks := sitedex.ChunkMarkdown("Hello world.", "Home")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Hello world.", chunks[0].Text)
	assert.Equal(t, "Home", chunks[0].PageName)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestChunkMarkdown_OrdinalIndexesFollowDocumentOrder(t *testing.T) {
	t.Parallel()

	// Three paragraphs large enough that no two fit in one chunk.
	para := strings.Repeat("word ", 160) // ~800 chars
	text := "first " + para + "\n\nsecond " + para + "\n\nthird " + para

	chunks := sitedex.ChunkMarkdown(text, "Classes")

	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.LessOrEqual(t, len(c.Text), sitedex.MaxChunkChars)
	}
	assert.True(t, strings.HasPrefix(chunks[0].Text, "first"))
	assert.True(t, strings.HasPrefix(chunks[1].Text, "second"))
	assert.True(t, strings.HasPrefix(chunks[2].Text, "third"))
}

func TestChunkMarkdown_Deterministic(t *testing.T) {
	t.Parallel()

	text := "# Pricing\n\nMonthly plans.\n\n# Hours\n\nOpen daily."

	first := sitedex.ChunkMarkdown(text, "Info")
	second := sitedex.ChunkMarkdown(text, "Info")

	assert.Equal(t, first, second)
}

func TestChunkMarkdown_SmallBlocksMerge(t *testing.T) {
	t.Parallel()

	chunks := sitedex.ChunkMarkdown("One.\n\nTwo.\n\nThree.", "Home")

	require.Len(t, chunks, 1)
	assert.Equal(t, "One.\n\nTwo.\n\nThree.", chunks[0].Text)
}

func TestChunkMarkdown_HeadingStartsNewBlock(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("content sentence. ", 60) // >1000 chars
	text := "# Intro\n" + big + "\n# Details\nShort."

	chunks := sitedex.ChunkMarkdown(text, "Docs")

	require.NotEmpty(t, chunks)
	// The final chunk carries the Details heading with its content.
	last := chunks[len(chunks)-1].Text
	assert.Contains(t, last, "# Details")
	assert.Contains(t, last, "Short.")
}

func TestChunkMarkdown_OversizeBlockSplitsAtSentences(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("This is a sentence about the gym. ", 100) // ~3400 chars

	chunks := sitedex.ChunkMarkdown(text, "About")

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), sitedex.MaxChunkChars)
		assert.True(t, strings.HasSuffix(c.Text, "."), "chunk should end on a sentence boundary: %q", c.Text[len(c.Text)-20:])
	}
}

func TestChunkMarkdown_HardSplitPreservesMultiByteRunes(t *testing.T) {
	t.Parallel()

	// No ASCII sentence punctuation, so the hard split is the only way
	// to cut this down. The leading "a" misaligns every 3-byte rune
	// against the byte budget.
	text := "a営" + strings.Repeat("営業時間は平日の朝九時から夜六時まで", 100) + "x"

	chunks := sitedex.ChunkMarkdown(text, "Hours")

	require.Greater(t, len(chunks), 1)
	var rebuilt strings.Builder
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c.Text), "chunk contains a torn rune: %q", c.Text)
		assert.LessOrEqual(t, len(c.Text), sitedex.MaxChunkChars)
		rebuilt.WriteString(c.Text)
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestChunkMarkdown_FencedCodeBlockKeptIntact(t *testing.T) {
	t.Parallel()

	code := "```\nline one\n\nline two\n```"
	chunks := sitedex.ChunkMarkdown("Before.\n\n"+code+"\n\nAfter.", "API")

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "line one\n\nline two")
}

func TestChunkMarkdown_HardSplitUnsegmentableText(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 3*sitedex.MaxChunkChars)

	chunks := sitedex.ChunkMarkdown(text, "Blob")

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), sitedex.MaxChunkChars)
	}
}
