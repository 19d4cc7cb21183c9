package domain

import (
	"fmt"
	"time"
)

// FailureKind classifies why a corpus entry was not ingested.
type FailureKind string

// Failure kinds, in roughly the order they can occur in a run.
const (
	// FailureParse marks a corpus line that could not be decoded.
	FailureParse FailureKind = "parse"

	// FailureEmpty marks a document whose cleaned text yielded no chunks.
	FailureEmpty FailureKind = "empty"

	// FailureEmbedding marks a document whose chunk batch failed to embed.
	FailureEmbedding FailureKind = "embedding"

	// FailureStorage marks a document whose insert was rolled back.
	FailureStorage FailureKind = "storage"
)

// Failure records a single document (or input line) skipped during a run.
// Failures are report values, never propagated errors: no document's
// failure aborts the batch.
type Failure struct {
	Kind   FailureKind
	Title  string
	Line   int // 1-based corpus line, when known
	Reason string
}

// String renders the failure in the side-channel log format.
func (f Failure) String() string {
	switch {
	case f.Line > 0 && f.Title == "":
		return fmt.Sprintf("[%s] line %d: %s", f.Kind, f.Line, f.Reason)
	case f.Title != "":
		return fmt.Sprintf("[%s] %s: %s", f.Kind, f.Title, f.Reason)
	default:
		return fmt.Sprintf("[%s] %s", f.Kind, f.Reason)
	}
}

// IngestReport summarizes one pipeline run.
type IngestReport struct {
	// Loaded is the number of documents decoded from the corpus.
	Loaded int

	// Skipped is the number filtered out because their title was
	// already ingested.
	Skipped int

	// Processed is the number of documents stored during this run.
	Processed int

	// TotalChunks is the number of chunks stored during this run.
	TotalChunks int

	// Failures holds every recorded skip-and-record failure.
	Failures []Failure

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Failed reports how many failures were recorded.
func (r IngestReport) Failed() int {
	return len(r.Failures)
}
