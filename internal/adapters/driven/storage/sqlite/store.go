package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/evidex/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/evidex/internal/core/domain"
	"github.com/custodia-labs/evidex/internal/core/ports/driven"
	"github.com/custodia-labs/evidex/internal/vectormath"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// ingestedAtLayout is a fixed-width RFC 3339 variant. RFC3339Nano trims
// trailing fractional zeros, which breaks lexicographic ordering within
// the same second; nine padded digits keep MIN/MAX on the text column
// correct.
const ingestedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed VectorStore.
type Store struct {
	db   *sqlx.DB
	dims int
	path string
}

// chunkRow mirrors one paper_chunks row.
type chunkRow struct {
	ID         int64  `db:"id"`
	Title      string `db:"title"`
	Abstract   string `db:"abstract"`
	TextChunk  string `db:"text_chunk"`
	Embedding  string `db:"embedding"`
	Metadata   string `db:"metadata"`
	PaperID    string `db:"paper_id"`
	ChunkIndex int    `db:"chunk_index"`
}

// NewStore opens (creating if needed) a SQLite store at the specified
// data directory for vectors of the given dimension. If dataDir is
// empty, defaults to ~/.evidex/data.
func NewStore(dataDir string, dims int) (*Store, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dims)
	}
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".evidex", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "evidex.db")

	// WAL mode for concurrent readers during ingestion.
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		dims: dims,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
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

// migrate applies all pending migrations in filename order.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
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
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		embedding, err := json.Marshal(c.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding for chunk %d: %w", c.Index, err)
		}
		metadata, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for chunk %d: %w", c.Index, err)
		}

		_, err = stmt.ExecContext(ctx,
			doc.Title,
			doc.Abstract,
			c.Text,
			string(embedding),
			string(metadata),
			doc.ID,
			c.Index,
			c.CharLength,
			c.Metadata.IngestedAt.UTC().Format(ingestedAtLayout),
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

// RankBySimilarity scans all stored chunks and ranks them in Go.
func (s *Store) RankBySimilarity(ctx context.Context, query []float32, maxResults int, floor float64) ([]domain.SearchResult, error) {
	if maxResults < domain.MinResults || maxResults > domain.MaxResults {
		return nil, fmt.Errorf("%w: max_results must be between %d and %d, got %d",
			domain.ErrInvalidInput, domain.MinResults, domain.MaxResults, maxResults)
	}
	if len(query) != s.dims {
		return nil, fmt.Errorf("query has %d dimensions, store has %d: %w",
			len(query), s.dims, domain.ErrDimensionMismatch)
	}

	var rows []chunkRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, title, abstract, text_chunk, embedding, metadata, paper_id, chunk_index
		FROM paper_chunks
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}

	results := make([]domain.SearchResult, 0, maxResults)
	for _, r := range rows {
		var embedding []float32
		if err := json.Unmarshal([]byte(r.Embedding), &embedding); err != nil {
			return nil, fmt.Errorf("decoding embedding for row %d: %w", r.ID, err)
		}
		if len(embedding) != s.dims {
			return nil, fmt.Errorf("row %d has %d dimensions, store has %d: %w",
				r.ID, len(embedding), s.dims, domain.ErrDimensionMismatch)
		}

		score := vectormath.CosineSimilarity(query, embedding)
		if score < floor {
			continue
		}

		var metadata domain.ChunkMetadata
		if err := json.Unmarshal([]byte(r.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for row %d: %w", r.ID, err)
		}

		results = append(results, domain.SearchResult{
			RowID:      r.ID,
			Title:      r.Title,
			Abstract:   r.Abstract,
			TextChunk:  r.TextChunk,
			Score:      score,
			Metadata:   metadata,
			PaperID:    r.PaperID,
			ChunkIndex: r.ChunkIndex,
		})
	}

	// Rows were read in id order; stable sort keeps insertion order for
	// equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// Stats reads the aggregate view.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var row struct {
		TotalChunks    int64           `db:"total_chunks"`
		UniquePapers   int64           `db:"unique_papers"`
		AvgChunkLength sql.NullFloat64 `db:"avg_chunk_length"`
		FirstIngestion sql.NullString  `db:"first_ingestion"`
		LastIngestion  sql.NullString  `db:"last_ingestion"`
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
		t, err := time.Parse(ingestedAtLayout, row.FirstIngestion.String)
		if err != nil {
			return domain.StoreStats{}, fmt.Errorf("parsing first_ingestion: %w", err)
		}
		stats.FirstIngestion = &t
	}
	if row.LastIngestion.Valid {
		t, err := time.Parse(ingestedAtLayout, row.LastIngestion.String)
		if err != nil {
			return domain.StoreStats{}, fmt.Errorf("parsing last_ingestion: %w", err)
		}
		stats.LastIngestion = &t
	}

	return stats, nil
}
