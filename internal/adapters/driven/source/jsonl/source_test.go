package jsonl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidex/internal/core/domain"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCorpus(t, `{"title": "Paper A", "abstract": "About A.", "full_text": "Body A.", "source": "pubmed"}
{"title": "Paper B", "abstract": "About B.", "full_text": "Body B."}
`)

	docs, failures, err := NewSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, docs, 2)

	assert.Equal(t, "Paper A", docs[0].Title)
	assert.Equal(t, "About A.", docs[0].Abstract)
	assert.Equal(t, "Body A.", docs[0].FullText)
	assert.Equal(t, "pubmed", docs[0].Source)
	assert.Equal(t, 1, docs[0].Line)
	assert.NotEmpty(t, docs[0].ID)
	assert.NotEqual(t, docs[0].ID, docs[1].ID)

	// Source defaults to the corpus file name.
	assert.Equal(t, "papers.jsonl", docs[1].Source)
	assert.Equal(t, 2, docs[1].Line)
}

func TestLoadMalformedLines(t *testing.T) {
	path := writeCorpus(t, `{"title": "Good", "abstract": "", "full_text": "Text."}
not json at all
{"abstract": "no title here"}

{"title": "Also good", "full_text": "More text."}
`)

	docs, failures, err := NewSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Len(t, failures, 2)

	assert.Equal(t, domain.FailureParse, failures[0].Kind)
	assert.Equal(t, 2, failures[0].Line)
	assert.Contains(t, failures[0].Reason, "invalid JSON")

	assert.Equal(t, domain.FailureParse, failures[1].Kind)
	assert.Equal(t, 3, failures[1].Line)
	assert.Equal(t, "missing title", failures[1].Reason)

	// Valid line after failures still loads, blank line counted but skipped.
	assert.Equal(t, 5, docs[1].Line)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := NewSource(filepath.Join(t.TempDir(), "nope.jsonl")).Load(context.Background())
	assert.Error(t, err)
}

func TestLoadCancelledContext(t *testing.T) {
	path := writeCorpus(t, `{"title": "A"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewSource(path).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
