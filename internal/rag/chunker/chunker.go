// Package chunker splits extracted document text into overlapping windows.
//
// Splitting is recursive: the coarsest separator present in the text is used
// first, and any piece still longer than the window size is split again with
// the next finer separator, down to a per-character cut. Lengths are counted
// in runes.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
)

// DefaultSeparators in priority order: paragraph, line, word, character.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

type Splitter struct {
	size       int
	overlap    int
	separators []string
}

type Option func(*Splitter)

func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.size = size
	}
}

func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

// WithSeparators replaces the separator priority list. A trailing "" keeps the
// hard cut; without it, pieces with no separator may exceed the size.
func WithSeparators(separators ...string) Option {
	return func(s *Splitter) {
		s.separators = append([]string(nil), separators...)
	}
}

func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		size:       config.DefaultChunkSize,
		overlap:    config.DefaultChunkOverlap,
		separators: DefaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", s.size)
	}
	if s.overlap < 0 || s.overlap >= s.size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", s.size, s.overlap)
	}
	if len(s.separators) == 0 {
		return nil, errors.New("at least one separator is required")
	}
	return s, nil
}

func (s *Splitter) ChunkSize() int { return s.size }
func (s *Splitter) Overlap() int   { return s.overlap }

// Split returns the ordered chunks of text. Empty or whitespace-only input
// yields no chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var finer []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			finer = separators[i+1:]
			break
		}
	}

	var chunks []string
	var small []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if length(piece) < s.size {
			small = append(small, piece)
			continue
		}
		if len(small) > 0 {
			chunks = append(chunks, s.merge(small)...)
			small = nil
		}
		if len(finer) == 0 {
			if trimmed := strings.TrimSpace(piece); trimmed != "" {
				chunks = append(chunks, trimmed)
			}
			continue
		}
		chunks = append(chunks, s.split(piece, finer)...)
	}
	if len(small) > 0 {
		chunks = append(chunks, s.merge(small)...)
	}
	return chunks
}

// merge packs consecutive pieces into chunks of at most size runes. After each
// emitted chunk the leading pieces are dropped until what is carried over fits
// inside the overlap and leaves room for the next piece.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var window []string
	total := 0

	for _, piece := range pieces {
		n := length(piece)
		if total+n > s.size && len(window) > 0 {
			if chunk := join(window); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.overlap || (total+n > s.size && total > 0) {
				total -= length(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += n
	}
	if chunk := join(window); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitKeepingSeparator splits text on sep and attaches each separator to the
// start of the piece that follows it, so joining the pieces restores the text.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		pieces := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

func join(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
