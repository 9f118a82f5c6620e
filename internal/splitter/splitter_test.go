package splitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	s := New(0, -1)
	assert.Equal(t, DefaultChunkSize, s.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, s.ChunkOverlap)

	// Overlap can never reach the chunk size.
	s = New(100, 100)
	assert.Equal(t, 50, s.ChunkOverlap)
}

func TestLanguageForExt(t *testing.T) {
	lang, ok := LanguageForExt(".py")
	require.True(t, ok)
	assert.Equal(t, LangPython, lang)

	lang, ok = LanguageForExt(".TS")
	require.True(t, ok)
	assert.Equal(t, LangJS, lang)

	_, ok = LanguageForExt(".cfg")
	assert.False(t, ok)

	_, ok = LanguageForExt("")
	assert.False(t, ok)
}

func TestSplit_SmallTextSingleChunk(t *testing.T) {
	s := New(3000, 0)
	text := "def hello():\n    pass\n"

	chunks := s.Split(text, LangPython)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].ByteStart)
}

func TestSplit_OffsetsAreExact(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("def fn():\n    print(\"x\")\n\n")
	}
	text := b.String()

	s := New(120, 0)
	chunks := s.Split(text, LangPython)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		require.NoError(t, c.Validate())
		end := c.ByteStart + len(c.Text)
		require.LessOrEqual(t, end, len(text))
		assert.Equal(t, c.Text, text[c.ByteStart:end])
		assert.LessOrEqual(t, len(c.Text), 120)
	}
}

func TestSplit_PrefersSemanticBoundaries(t *testing.T) {
	text := "def alpha():\n    return 1\n\ndef beta():\n    return 2\n"

	s := New(30, 0)
	chunks := s.Split(text, LangPython)
	require.GreaterOrEqual(t, len(chunks), 2)

	// The second definition should start its own chunk.
	var found bool
	for _, c := range chunks {
		if strings.HasPrefix(c.Text, "\ndef beta") {
			found = true
		}
	}
	assert.True(t, found, "expected a chunk cut at the beta definition")
}

func TestSplit_Overlap(t *testing.T) {
	text := strings.Repeat("one two three four five six seven eight nine ten\n", 10)

	s := New(100, 60)
	chunks := s.Split(text, LangPlainText)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prevEnd := chunks[i-1].ByteStart + len(chunks[i-1].Text)
		assert.Less(t, chunks[i].ByteStart, prevEnd, "chunk %d should overlap its predecessor", i)
		// Offsets still point at the true position of the text.
		end := chunks[i].ByteStart + len(chunks[i].Text)
		assert.Equal(t, chunks[i].Text, text[chunks[i].ByteStart:end])
	}
}

func TestSplit_HardSplitWithoutSeparators(t *testing.T) {
	text := strings.Repeat("x", 250)

	s := New(100, 0)
	chunks := s.Split(text, LangPlainText)
	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].ByteStart)
	assert.Equal(t, 100, chunks[1].ByteStart)
	assert.Equal(t, 200, chunks[2].ByteStart)
	assert.Equal(t, 50, len(chunks[2].Text))
}

func TestSplit_HardSplitKeepsRunesWhole(t *testing.T) {
	// 3-byte runes with no separator anywhere; 100 is not a multiple of 3,
	// so a fixed byte cut would land mid-rune.
	text := strings.Repeat("語", 80)

	s := New(100, 0)
	chunks := s.Split(text, LangPlainText)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c.Text), "chunk at offset %d cut mid-rune", c.ByteStart)
		end := c.ByteStart + len(c.Text)
		assert.Equal(t, c.Text, text[c.ByteStart:end])
	}

	// No overlap, so the chunks reassemble the input exactly.
	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Text)
	}
	assert.Equal(t, text, joined.String())
}

func TestSplit_EmptyAndBlankText(t *testing.T) {
	s := New(100, 0)
	assert.Empty(t, s.Split("", LangPython))
	assert.Empty(t, s.Split("   \n\n  \n", LangPython))
}
