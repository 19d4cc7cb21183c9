package domain

import (
	"strings"
	"time"
)

// Document is one entry of an ingestion corpus.
// The title is the natural key: a title that has been ingested once is
// never reprocessed by a later pipeline run.
type Document struct {
	// ID is assigned by the pipeline when the document is first processed.
	ID string

	// Title uniquely identifies the document within the corpus.
	Title string

	// Abstract is an optional summary, embedded ahead of the full text.
	Abstract string

	// FullText is the optional body of the document.
	FullText string

	// Source names where the document came from (usually the corpus file).
	Source string

	// Line is the 1-based line of the corpus file the document was read
	// from, when known. Zero means unknown.
	Line int
}

// Text returns the content to segment: abstract and full text concatenated,
// separated by a blank line when both are present.
func (d Document) Text() string {
	var b strings.Builder
	if d.Abstract != "" {
		b.WriteString(d.Abstract)
		if d.FullText != "" {
			b.WriteString("\n\n")
		}
	}
	b.WriteString(d.FullText)
	return b.String()
}

// Chunk is a bounded, sentence-aligned excerpt of a document.
// It is the unit of embedding and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the ordinal position within the document, contiguous from 0.
	Index int

	// Text is the chunk content.
	Text string

	// WordCount is the number of whitespace-delimited tokens in Text.
	WordCount int

	// CharLength is the length of Text in bytes.
	CharLength int

	// Embedding is the vector representation. Its length must equal the
	// deployment's embedding dimension for every stored chunk.
	Embedding []float32

	// Metadata carries the fixed auxiliary attributes stored with the chunk.
	Metadata ChunkMetadata
}

// ChunkMetadata is the typed metadata record persisted alongside each chunk.
// The fields are fixed; there is no open-ended key-value blob.
type ChunkMetadata struct {
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
	WordCount   int       `json:"word_count"`
	SourceFile  string    `json:"source_file"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// StoreStats is the aggregate view over everything ingested.
// First/LastIngestion are nil when the store is empty.
type StoreStats struct {
	TotalChunks    int64
	UniquePapers   int64
	AvgChunkLength float64
	FirstIngestion *time.Time
	LastIngestion  *time.Time
}
