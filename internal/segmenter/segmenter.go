// Package segmenter cleans raw document text and splits it into
// overlapping, sentence-aligned windows of bounded word length.
package segmenter

import (
	"regexp"
	"strings"
)

// DefaultWindowSize is the default window size in words.
const DefaultWindowSize = 500

// DefaultOverlapSentences is the default number of trailing sentences
// repeated at the start of the next window.
const DefaultOverlapSentences = 2

// Cleaning passes, applied in order. Line-scoped artifacts are stripped
// before whitespace is collapsed, otherwise the line anchors never match.
var (
	formFeedRe   = regexp.MustCompile(`[\f\x0b]`)
	pageLineRe   = regexp.MustCompile(`(?m)^\s*Page \d+.*$`)
	numberLineRe = regexp.MustCompile(`(?m)^\s*\d+\s*$`)
	nonTextRe    = regexp.MustCompile(`[^\w\s.,!?;:\-()"']+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Window is one emitted chunk candidate.
type Window struct {
	// Text is the window content, sentences joined by single spaces.
	Text string

	// WordCount is the number of whitespace-delimited tokens in Text.
	WordCount int

	// Sentences is the number of sentences the window holds.
	Sentences int
}

// Segmenter splits cleaned text into overlapping sentence windows.
type Segmenter struct {
	windowSize       int
	overlapSentences int
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithWindowSize sets the window size in words.
func WithWindowSize(words int) Option {
	return func(s *Segmenter) {
		if words > 0 {
			s.windowSize = words
		}
	}
}

// WithOverlapSentences sets how many trailing sentences seed the next window.
func WithOverlapSentences(sentences int) Option {
	return func(s *Segmenter) {
		if sentences >= 0 {
			s.overlapSentences = sentences
		}
	}
}

// New creates a Segmenter with the given options.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		windowSize:       DefaultWindowSize,
		overlapSentences: DefaultOverlapSentences,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WindowSize returns the configured window size in words.
func (s *Segmenter) WindowSize() int {
	return s.windowSize
}

// Clean normalizes raw text: strips form feeds, page-number lines and
// standalone-number lines, drops characters outside the word/punctuation
// whitelist, collapses whitespace runs to single spaces and trims.
func (s *Segmenter) Clean(raw string) string {
	if raw == "" {
		return ""
	}
	text := formFeedRe.ReplaceAllString(raw, "")
	text = pageLineRe.ReplaceAllString(text, "")
	text = numberLineRe.ReplaceAllString(text, "")
	text = nonTextRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Segment splits cleaned text into windows. Sentences accumulate greedily
// while the running word count stays within the window size; when a
// sentence would overflow a non-empty window, the window is emitted and
// the next one is seeded with the last overlapSentences sentences of the
// one just closed. A single sentence longer than the window is emitted
// alone and never split mid-sentence. Empty input yields no windows.
func (s *Segmenter) Segment(text string) []Window {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var windows []Window
	var current []string
	currentWords := 0

	for _, sentence := range sentences {
		words := len(strings.Fields(sentence))
		if words == 0 {
			continue
		}

		if currentWords+words > s.windowSize && len(current) > 0 {
			windows = append(windows, makeWindow(current, currentWords))

			if s.overlapSentences > 0 && len(current) > 1 {
				start := len(current) - s.overlapSentences
				if start < 0 {
					start = 0
				}
				overlap := current[start:]
				current = append([]string(nil), overlap...)
				currentWords = countWords(current)
			} else {
				current = nil
				currentWords = 0
			}
		}

		current = append(current, sentence)
		currentWords += words
	}

	if len(current) > 0 {
		windows = append(windows, makeWindow(current, currentWords))
	}

	return windows
}

// SplitSentences splits text at boundary punctuation (. ! ?) followed by
// whitespace. A heuristic splitter, not a full grammar: abbreviations and
// decimal points produce extra boundaries, which the windowing tolerates.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			// Boundary only when the terminator is followed by whitespace.
			if i+1 < len(runes) && isSpace(runes[i+1]) {
				sentence := strings.TrimSpace(string(runes[start : i+1]))
				if sentence != "" {
					sentences = append(sentences, sentence)
				}
				for i+1 < len(runes) && isSpace(runes[i+1]) {
					i++
				}
				start = i + 1
			}
		}
	}

	if start < len(runes) {
		sentence := strings.TrimSpace(string(runes[start:]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}

	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func makeWindow(sentences []string, wordCount int) Window {
	return Window{
		Text:      strings.Join(sentences, " "),
		WordCount: wordCount,
		Sentences: len(sentences),
	}
}

func countWords(sentences []string) int {
	total := 0
	for _, s := range sentences {
		total += len(strings.Fields(s))
	}
	return total
}
