package sitedex

import (
	"strings"
	"unicode/utf8"
)

// MaxChunkChars bounds the size of a single retrieval unit.
const MaxChunkChars = 1200

// Chunk is a bounded-size slice of a page's normalized content, prepared
// for embedding. Chunks have no identity beyond (page, ordinal index) and
// are never persisted standalone.
type Chunk struct {
	Text     string `json:"text"`
	PageName string `json:"pageName"`
	Index    int    `json:"index"`
}

// ChunkMarkdown splits markdown into ordered, ordinal-indexed chunks of at
// most MaxChunkChars characters. It is deterministic for identical input.
//
// Boundaries prefer markdown structure: headings start a new block, blank
// lines separate blocks, and fenced code blocks are kept intact. Blocks
// larger than the limit are split at sentence boundaries, with a hard split
// as a last resort. Empty or whitespace-only input yields no chunks.
func ChunkMarkdown(text, pageName string) []Chunk {
	blocks := splitBlocks(text)
	if len(blocks) == 0 {
		return nil
	}

	var chunks []Chunk
	var cur strings.Builder

	flush := func() {
		s := strings.TrimSpace(cur.String())
		cur.Reset()
		if s == "" {
			return
		}
		chunks = append(chunks, Chunk{Text: s, PageName: pageName, Index: len(chunks)})
	}

	for _, block := range blocks {
		if len(block) > MaxChunkChars {
			flush()
			for _, piece := range splitOversizeBlock(block) {
				cur.WriteString(piece)
				flush()
			}
			continue
		}

		if cur.Len() > 0 && cur.Len()+len(block)+2 > MaxChunkChars {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(block)
	}
	flush()

	return chunks
}

// splitBlocks splits markdown into blocks at headings and blank lines.
// Fenced code blocks are treated as a single block regardless of blank
// lines inside the fence.
func splitBlocks(text string) []string {
	lines := strings.Split(text, "\n")

	var blocks []string
	var cur []string
	inFence := false

	flush := func() {
		block := strings.TrimSpace(strings.Join(cur, "\n"))
		cur = cur[:0]
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			cur = append(cur, line)
			if !inFence {
				flush()
			}
			continue
		}
		if inFence {
			cur = append(cur, line)
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}
		if isHeading(trimmed) {
			flush()
		}
		cur = append(cur, line)
	}
	flush()

	return blocks
}

// isHeading reports whether a trimmed line is a markdown heading (H1-H6).
func isHeading(line string) bool {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	return n >= 1 && n <= 6 && n < len(line) && line[n] == ' '
}

// splitOversizeBlock splits a block exceeding MaxChunkChars at sentence
// boundaries, hard-splitting any single sentence that is itself too long.
func splitOversizeBlock(block string) []string {
	var pieces []string
	var cur strings.Builder

	flush := func() {
		s := strings.TrimSpace(cur.String())
		cur.Reset()
		if s != "" {
			pieces = append(pieces, s)
		}
	}

	for _, sentence := range splitSentences(block) {
		for len(sentence) > MaxChunkChars {
			flush()
			// Back off to a rune boundary so the hard split never cuts
			// a multi-byte character in half.
			cut := MaxChunkChars
			for cut > 0 && !utf8.RuneStart(sentence[cut]) {
				cut--
			}
			pieces = append(pieces, strings.TrimSpace(sentence[:cut]))
			sentence = sentence[cut:]
		}
		if cur.Len() > 0 && cur.Len()+len(sentence)+1 > MaxChunkChars {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(strings.TrimSpace(sentence))
	}
	flush()

	return pieces
}

// splitSentences splits text after sentence-ending punctuation followed by
// whitespace. The trailing fragment is returned as-is.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && (text[i+1] == ' ' || text[i+1] == '\n') {
			sentences = append(sentences, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}
