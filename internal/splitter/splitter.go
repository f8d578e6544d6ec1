package splitter

import (
	"strings"

	"github.com/ragworks/docrag/pkg/types"
)

// Piece is one splitter output segment. Start and End are byte offsets into
// the source text covering the piece's core content; when overlap injection
// is enabled the injected prefix is part of Text but not of the offset range.
type Piece struct {
	Text  string
	Start int
	End   int
}

// Splitter divides text into size-bounded pieces along an ordered separator
// priority list. A Splitter is immutable and safe for concurrent use.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// New builds a splitter from a validated chunking config. Separator priority
// runs from coarsest to finest: paragraph breaks, line breaks, sentence
// enders, clause punctuation, word spaces, then a hard-split fallback.
func New(cfg types.ChunkingConfig) *Splitter {
	var seps []string
	if cfg.PreserveParagraphs {
		seps = append(seps, "\n\n")
	}
	seps = append(seps, "\n")
	if cfg.PreserveSentences {
		seps = append(seps, ". ", "! ", "? ")
	}
	seps = append(seps, "; ", ", ", " ")

	return &Splitter{
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		separators:   seps,
	}
}

// Split divides text into ordered pieces. Offsets are tracked during the
// split itself, so every piece's Start/End is exact even when overlap
// injection later duplicates substrings.
func (s *Splitter) Split(text string) []Piece {
	if text == "" {
		return nil
	}

	pieces := s.splitRecursive(text)
	pieces = s.mergeSmall(text, pieces)
	return s.injectOverlap(pieces)
}

// ChunkSize returns the configured target piece size in characters
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// ChunkOverlap returns the configured overlap length in characters
func (s *Splitter) ChunkOverlap() int {
	return s.chunkOverlap
}

func (s *Splitter) splitRecursive(text string) []Piece {
	if len(text) <= s.chunkSize {
		return []Piece{{Text: text, Start: 0, End: len(text)}}
	}

	var pieces []Piece
	base := 0
	remaining := text

	for len(remaining) > 0 {
		if len(remaining) <= s.chunkSize {
			pieces = append(pieces, Piece{Text: remaining, Start: base, End: base + len(remaining)})
			break
		}

		cut, ok := s.findCut(remaining)
		if !ok {
			// No separator in the window, force a hard split. Advance by
			// size minus overlap so consecutive pieces keep shared context
			// even inside an unsplittable run.
			pieces = append(pieces, Piece{
				Text:  remaining[:s.chunkSize],
				Start: base,
				End:   base + s.chunkSize,
			})
			step := s.chunkSize - s.chunkOverlap
			if step <= 0 {
				step = s.chunkSize
			}
			remaining = remaining[step:]
			base += step
			continue
		}

		left := strings.TrimRight(remaining[:cut], " \t\r\n")
		if left != "" {
			pieces = append(pieces, Piece{Text: left, Start: base, End: base + len(left)})
		}
		remaining = remaining[cut:]
		base += cut
	}

	return pieces
}

// findCut returns the split point for the current window: the end of the
// last occurrence of the highest-priority separator found at a positive
// index within [0, chunkSize+len(sep)].
func (s *Splitter) findCut(text string) (int, bool) {
	for _, sep := range s.separators {
		window := s.chunkSize + len(sep)
		if window > len(text) {
			window = len(text)
		}

		idx := strings.LastIndex(text[:window], sep)
		if idx > 0 {
			return idx + len(sep), true
		}
	}
	return 0, false
}

// mergeSmall folds pieces shorter than half the chunk size into their
// successor when the combined span still fits. The merged piece re-slices
// the source so its offsets stay exact.
func (s *Splitter) mergeSmall(source string, pieces []Piece) []Piece {
	if len(pieces) < 2 {
		return pieces
	}

	half := s.chunkSize / 2
	out := make([]Piece, 0, len(pieces))

	for i := 0; i < len(pieces); i++ {
		cur := pieces[i]
		for i+1 < len(pieces) && len(cur.Text) < half {
			next := pieces[i+1]
			if next.End-cur.Start > s.chunkSize {
				break
			}
			cur = Piece{
				Text:  source[cur.Start:next.End],
				Start: cur.Start,
				End:   next.End,
			}
			i++
		}
		out = append(out, cur)
	}

	return out
}

// injectOverlap prepends the trailing chunkOverlap characters of each piece
// to the piece that follows it. Offsets are untouched; they keep describing
// the pre-overlap content.
func (s *Splitter) injectOverlap(pieces []Piece) []Piece {
	if s.chunkOverlap <= 0 || len(pieces) < 2 {
		return pieces
	}

	prevTail := tail(pieces[0].Text, s.chunkOverlap)
	for i := 1; i < len(pieces); i++ {
		next := tail(pieces[i].Text, s.chunkOverlap)
		pieces[i].Text = prevTail + pieces[i].Text
		prevTail = next
	}

	return pieces
}

func tail(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[len(text)-n:]
}
