package splitter

import (
	"strings"
	"unicode/utf8"

	"github.com/davidbridgwood/RepoGPT/pkg/types"
)

const (
	// DefaultChunkSize is the target maximum chunk length in bytes.
	DefaultChunkSize = 3000

	// DefaultChunkOverlap is the number of trailing bytes re-included at
	// the start of the next chunk.
	DefaultChunkOverlap = 0
)

// Splitter cuts file text into bounded-size chunks at language-aware
// boundaries, keeping an exact byte offset for every chunk.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// New creates a Splitter. Non-positive size or negative overlap fall back
// to the defaults.
func New(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Splitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
}

// piece is a contiguous slice of the original text. Fragmentation and
// merging both preserve contiguity, so a piece is always text[start:end]
// of the source.
type piece struct {
	text  string
	start int
}

// Split cuts text into chunks for the given language. Every returned chunk
// satisfies text[c.ByteStart : c.ByteStart+len(c.Text)] == c.Text.
func (s *Splitter) Split(text string, lang Language) []types.RawChunk {
	if text == "" {
		return nil
	}

	pieces := s.fragment(text, 0, separatorsFor(lang))
	merged := s.merge(text, pieces)

	chunks := make([]types.RawChunk, 0, len(merged))
	for _, p := range merged {
		if strings.TrimSpace(p.text) == "" {
			continue
		}
		chunks = append(chunks, types.RawChunk{Text: p.text, ByteStart: p.start})
	}
	return chunks
}

// fragment recursively splits text until every piece fits ChunkSize,
// walking down the separator stack. Separators stay attached to the start
// of the piece that follows them so no bytes are lost.
func (s *Splitter) fragment(text string, start int, seps []string) []piece {
	if len(text) <= s.ChunkSize {
		return []piece{{text: text, start: start}}
	}

	for i, sep := range seps {
		if sep == "" {
			return s.hardSplit(text, start)
		}
		if !strings.Contains(text, sep) {
			continue
		}
		parts := splitKeep(text, start, sep)
		if len(parts) < 2 {
			continue
		}
		out := make([]piece, 0, len(parts))
		for _, p := range parts {
			out = append(out, s.fragment(p.text, p.start, seps[i+1:])...)
		}
		return out
	}

	// No separator matched; the oversized piece is emitted as-is.
	return []piece{{text: text, start: start}}
}

// hardSplit cuts text at ChunkSize boundaries, backing each cut off to the
// previous rune start so no chunk begins or ends mid-rune. A single rune
// wider than ChunkSize is cut anyway so the loop always advances.
func (s *Splitter) hardSplit(text string, start int) []piece {
	out := make([]piece, 0, len(text)/s.ChunkSize+1)
	for i := 0; i < len(text); {
		end := i + s.ChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			for end > i && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == i {
				end = i + s.ChunkSize
			}
		}
		out = append(out, piece{text: text[i:end], start: start + i})
		i = end
	}
	return out
}

// splitKeep splits text on sep, keeping each separator as the prefix of the
// piece that follows it.
func splitKeep(text string, start int, sep string) []piece {
	var out []piece
	prev := 0
	search := 0
	for {
		i := strings.Index(text[search:], sep)
		if i < 0 {
			break
		}
		i += search
		if i > prev {
			out = append(out, piece{text: text[prev:i], start: start + prev})
		}
		prev = i
		search = i + len(sep)
	}
	if prev < len(text) {
		out = append(out, piece{text: text[prev:], start: start + prev})
	}
	return out
}

// merge greedily joins adjacent pieces into chunks no larger than
// ChunkSize. Because pieces are contiguous, a merged chunk is re-sliced
// from the source text and its offset is the first piece's offset. With a
// positive overlap, trailing pieces within the overlap window are
// re-included at the start of the next chunk.
func (s *Splitter) merge(text string, pieces []piece) []piece {
	var out []piece
	i := 0
	for i < len(pieces) {
		start := pieces[i].start
		end := start + len(pieces[i].text)
		j := i + 1
		for j < len(pieces) {
			next := pieces[j].start + len(pieces[j].text)
			if next-start > s.ChunkSize {
				break
			}
			end = next
			j++
		}
		out = append(out, piece{text: text[start:end], start: start})
		if j >= len(pieces) {
			break
		}

		next := j
		if s.ChunkOverlap > 0 {
			for next > i+1 && end-pieces[next-1].start <= s.ChunkOverlap {
				next--
			}
		}
		if next <= i {
			next = i + 1
		}
		i = next
	}
	return out
}
