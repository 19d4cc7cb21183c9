// Package jsonl loads documents from a JSON Lines corpus file, one
// document object per line.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/evidex/internal/core/domain"
	"github.com/custodia-labs/evidex/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// maxLineSize bounds a single corpus line. Full paper texts are large,
// so the scanner buffer grows well past the bufio default.
const maxLineSize = 10 * 1024 * 1024

// record is the wire format of one corpus line.
type record struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	FullText string `json:"full_text"`
	Source   string `json:"source"`
}

// Source reads documents from a JSONL file.
type Source struct {
	path string
}

// NewSource creates a source for the given corpus file path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the corpus file path.
func (s *Source) Path() string {
	return s.path
}

// Load reads every line of the corpus. Malformed lines become parse
// failures with their 1-based line number; they never abort the load.
func (s *Source) Load(ctx context.Context) ([]domain.Document, []domain.Failure, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	defaultSource := filepath.Base(s.path)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var (
		docs     []domain.Document
		failures []domain.Failure
		line     int
	)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			failures = append(failures, domain.Failure{
				Kind:   domain.FailureParse,
				Line:   line,
				Reason: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		if strings.TrimSpace(rec.Title) == "" {
			failures = append(failures, domain.Failure{
				Kind:   domain.FailureParse,
				Line:   line,
				Reason: "missing title",
			})
			continue
		}

		source := rec.Source
		if source == "" {
			source = defaultSource
		}

		docs = append(docs, domain.Document{
			ID:       uuid.New().String(),
			Title:    rec.Title,
			Abstract: rec.Abstract,
			FullText: rec.FullText,
			Source:   source,
			Line:     line,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading corpus: %w", err)
	}

	return docs, failures, nil
}
