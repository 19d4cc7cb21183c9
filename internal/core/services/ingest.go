package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/evidex/internal/core/domain"
	"github.com/custodia-labs/evidex/internal/core/ports/driven"
	"github.com/custodia-labs/evidex/internal/core/ports/driving"
	"github.com/custodia-labs/evidex/internal/logger"
	"github.com/custodia-labs/evidex/internal/segmenter"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.IngestService = (*IngestionPipeline)(nil)

// IngestionPipeline runs the load-segment-embed-store pipeline over a
// document source. Documents are processed strictly in corpus order;
// a failed document is recorded and skipped, never retried, and never
// aborts the run. Only run-level faults (unreadable source, unreachable
// store or embedding provider) end a run early.
type IngestionPipeline struct {
	source   driven.DocumentSource
	store    driven.VectorStore
	embedder driven.EmbeddingService
	seg      *segmenter.Segmenter

	failureLog io.Writer
}

// NewIngestionPipeline creates a new ingestion pipeline.
func NewIngestionPipeline(
	source driven.DocumentSource,
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	seg *segmenter.Segmenter,
) *IngestionPipeline {
	return &IngestionPipeline{
		source:   source,
		store:    store,
		embedder: embedder,
		seg:      seg,
	}
}

// SetFailureLog sets an optional writer that receives one line per
// recorded failure at the end of a run.
func (p *IngestionPipeline) SetFailureLog(w io.Writer) {
	p.failureLog = w
}

// Run executes one complete ingestion pass.
func (p *IngestionPipeline) Run(ctx context.Context) (domain.IngestReport, error) {
	logger.Section("Ingestion")
	start := time.Now()
	var report domain.IngestReport

	// Failures already recorded must reach the side channel even when a
	// run-level fault ends the run early.
	defer func() { p.writeFailureLog(report.Failures) }()

	if err := p.embedder.Ping(ctx); err != nil {
		return report, fmt.Errorf("embedding provider unavailable: %w", err)
	}
	logger.Info("Embedding model: %s (%d dimensions)", p.embedder.ModelName(), p.embedder.Dimensions())

	docs, parseFailures, err := p.source.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("loading documents: %w", err)
	}
	report.Loaded = len(docs)
	report.Failures = append(report.Failures, parseFailures...)
	logger.Info("Loaded %d documents (%d malformed lines)", len(docs), len(parseFailures))

	existing, err := p.store.ExistingTitles(ctx)
	if err != nil {
		return report, fmt.Errorf("listing existing titles: %w", err)
	}
	logger.Debug("Store already holds %d titles", len(existing))

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		if _, ok := existing[doc.Title]; ok {
			logger.Debug("Skipping %q: already ingested", doc.Title)
			report.Skipped++
			continue
		}

		chunks, fatal, err := p.processDocument(ctx, doc)
		if fatal {
			report.Duration = time.Since(start)
			return report, err
		}
		if err != nil {
			report.Failures = append(report.Failures, classifyFailure(doc, err))
			logger.Warn("Document %q failed: %v", doc.Title, err)
			continue
		}

		// A stored title is never reprocessed, even within one run.
		existing[doc.Title] = struct{}{}
		report.Processed++
		report.TotalChunks += len(chunks)
		logger.Debug("Stored %q: %d chunks", doc.Title, len(chunks))
	}

	report.Duration = time.Since(start)
	logger.Info("Run complete: %d processed, %d skipped, %d failed, %d chunks in %s",
		report.Processed, report.Skipped, report.Failed(), report.TotalChunks, report.Duration.Round(time.Millisecond))

	return report, nil
}

// processDocument segments, embeds and stores a single document. The
// fatal flag marks provider-level outages that must end the run.
func (p *IngestionPipeline) processDocument(ctx context.Context, doc domain.Document) ([]domain.Chunk, bool, error) {
	cleaned := p.seg.Clean(doc.Text())
	windows := p.seg.Segment(cleaned)
	if len(windows) == 0 {
		return nil, false, &pipelineError{kind: domain.FailureEmpty, err: fmt.Errorf("no text to chunk")}
	}

	ingestedAt := time.Now().UTC()
	texts := make([]string, len(windows))
	chunks := make([]domain.Chunk, len(windows))
	for i, w := range windows {
		texts[i] = w.Text
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Index:      i,
			Text:       w.Text,
			WordCount:  w.WordCount,
			CharLength: len(w.Text),
			Metadata: domain.ChunkMetadata{
				ChunkIndex:  i,
				TotalChunks: len(windows),
				WordCount:   w.WordCount,
				SourceFile:  doc.Source,
				IngestedAt:  ingestedAt,
			},
		}
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		// Distinguish a bad document from a dead provider: if the
		// provider no longer answers pings, the run cannot continue.
		if pingErr := p.embedder.Ping(ctx); pingErr != nil {
			return nil, true, fmt.Errorf("embedding provider unavailable: %w", pingErr)
		}
		return nil, false, &pipelineError{kind: domain.FailureEmbedding, err: err}
	}
	if len(embeddings) != len(chunks) {
		return nil, false, &pipelineError{
			kind: domain.FailureEmbedding,
			err:  fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(embeddings)),
		}
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := p.store.InsertDocumentChunks(ctx, doc, chunks); err != nil {
		return nil, false, &pipelineError{kind: domain.FailureStorage, err: err}
	}
	return chunks, false, nil
}

// pipelineError tags a per-document error with its failure kind.
type pipelineError struct {
	kind domain.FailureKind
	err  error
}

func (e *pipelineError) Error() string {
	return e.err.Error()
}

func (e *pipelineError) Unwrap() error {
	return e.err
}

// classifyFailure converts a per-document error into a report entry.
func classifyFailure(doc domain.Document, err error) domain.Failure {
	kind := domain.FailureStorage
	var pe *pipelineError
	if errors.As(err, &pe) {
		kind = pe.kind
	}
	return domain.Failure{
		Kind:   kind,
		Title:  doc.Title,
		Line:   doc.Line,
		Reason: err.Error(),
	}
}

// writeFailureLog appends one line per failure to the side-channel log.
func (p *IngestionPipeline) writeFailureLog(failures []domain.Failure) {
	if p.failureLog == nil || len(failures) == 0 {
		return
	}
	for _, f := range failures {
		fmt.Fprintln(p.failureLog, f.String())
	}
}
