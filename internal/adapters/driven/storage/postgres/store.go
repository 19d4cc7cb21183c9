package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/evidex/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/evidex/internal/core/domain"
	"github.com/custodia-labs/evidex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const dimToken = "__EMBEDDING_DIM__"

// Store is a pgvector-backed VectorStore.
type Store struct {
	db   *sqlx.DB
	dims int
}

// resultRow mirrors one ranked search row.
type resultRow struct {
	ID         int64   `db:"id"`
	Title      string  `db:"title"`
	Abstract   string  `db:"abstract"`
	TextChunk  string  `db:"text_chunk"`
	Metadata   string  `db:"metadata"`
	PaperID    string  `db:"paper_id"`
	ChunkIndex int     `db:"chunk_index"`
	Score      float64 `db:"similarity_score"`
}

// NewStore connects to Postgres with the given DSN and ensures the
// schema exists for vectors of the given dimension.
func NewStore(ctx context.Context, dsn string, dims int) (*Store, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dims)
	}

	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s := &Store{db: db, dims: dims}

	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// migrate applies all pending migrations in filename order. The
// embedded SQL carries a dimension token so the vector column width
// follows the configured embedding model.
func (s *Store) migrate(ctx context.Context, fsys embed.FS) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		version, err := migrationVersion(name)
		if err != nil {
			return err
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		stmtSQL := strings.ReplaceAll(string(content), dimToken, strconv.Itoa(s.dims))
		if _, err := s.db.ExecContext(ctx, stmtSQL); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// migrationVersion parses the numeric prefix of a migration filename.
func migrationVersion(name string) (int, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("malformed migration filename %q", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("malformed migration version in %q: %w", name, err)
	}
	return version, nil
}

// ExistingTitles returns the set of document titles already stored.
func (s *Store) ExistingTitles(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT title FROM paper_chunks")
	if err != nil {
		return nil, fmt.Errorf("querying titles: %w", err)
	}
	defer rows.Close()

	titles := make(map[string]struct{})
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		titles[title] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating titles: %w", err)
	}
	return titles, nil
}

// InsertDocumentChunks inserts one row per chunk in a single transaction.
func (s *Store) InsertDocumentChunks(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) != s.dims {
			return fmt.Errorf("chunk %d of %q has %d dimensions, store has %d: %w",
				c.Index, doc.Title, len(c.Embedding), s.dims, domain.ErrDimensionMismatch)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO paper_chunks
			(title, abstract, text_chunk, embedding, metadata, paper_id, chunk_index, chunk_length, ingested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		metadata, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for chunk %d: %w", c.Index, err)
		}

		_, err = stmt.ExecContext(ctx,
			doc.Title,
			doc.Abstract,
			c.Text,
			pgvector.NewVector(c.Embedding),
			string(metadata),
			doc.ID,
			c.Index,
			c.CharLength,
			c.Metadata.IngestedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %d of %q: %w", c.Index, doc.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing document %q: %w", doc.Title, err)
	}
	return nil
}

// RankBySimilarity ranks chunks inside Postgres using the cosine
// distance operator. Ties break by insertion order.
func (s *Store) RankBySimilarity(ctx context.Context, query []float32, maxResults int, floor float64) ([]domain.SearchResult, error) {
	if maxResults < domain.MinResults || maxResults > domain.MaxResults {
		return nil, fmt.Errorf("%w: max_results must be between %d and %d, got %d",
			domain.ErrInvalidInput, domain.MinResults, domain.MaxResults, maxResults)
	}
	if len(query) != s.dims {
		return nil, fmt.Errorf("query has %d dimensions, store has %d: %w",
			len(query), s.dims, domain.ErrDimensionMismatch)
	}

	var rows []resultRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT
			id, title, abstract, text_chunk, metadata, paper_id, chunk_index,
			1 - (embedding <=> $1) AS similarity_score
		FROM paper_chunks
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY similarity_score DESC, id ASC
		LIMIT $3
	`, pgvector.NewVector(query), floor, maxResults)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(rows))
	for _, r := range rows {
		var metadata domain.ChunkMetadata
		if err := json.Unmarshal([]byte(r.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for row %d: %w", r.ID, err)
		}
		results = append(results, domain.SearchResult{
			RowID:      r.ID,
			Title:      r.Title,
			Abstract:   r.Abstract,
			TextChunk:  r.TextChunk,
			Score:      r.Score,
			Metadata:   metadata,
			PaperID:    r.PaperID,
			ChunkIndex: r.ChunkIndex,
		})
	}
	return results, nil
}

// Stats reads the aggregate view.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var row struct {
		TotalChunks    int64           `db:"total_chunks"`
		UniquePapers   int64           `db:"unique_papers"`
		AvgChunkLength sql.NullFloat64 `db:"avg_chunk_length"`
		FirstIngestion sql.NullTime    `db:"first_ingestion"`
		LastIngestion  sql.NullTime    `db:"last_ingestion"`
	}

	err := s.db.GetContext(ctx, &row, "SELECT * FROM paper_chunks_stats")
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("querying stats: %w", err)
	}

	stats := domain.StoreStats{
		TotalChunks:    row.TotalChunks,
		UniquePapers:   row.UniquePapers,
		AvgChunkLength: row.AvgChunkLength.Float64,
	}
	if row.FirstIngestion.Valid {
		t := row.FirstIngestion.Time.UTC()
		stats.FirstIngestion = &t
	}
	if row.LastIngestion.Valid {
		t := row.LastIngestion.Time.UTC()
		stats.LastIngestion = &t
	}
	return stats, nil
}
