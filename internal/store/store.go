// Package store is the persistent chunk index: (id, vector, text, metadata)
// records in SQLite, with filtered similarity search and exact metadata reads.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/regdocs/regrag/internal/store/migrations"
)

// Record is one indexed chunk.
type Record struct {
	ID         string
	Document   string
	Page       int
	DocType    string
	ChunkIndex int
	FilePath   string
	Text       string
	Embedding  []float32
}

// Filter is a conjunction of field-equality predicates. Zero values mean
// "any": empty Document/DocType and Page 0 do not constrain the result.
type Filter struct {
	Document string
	Page     int
	DocType  string
}

// Result is a retrieved chunk. Distance is cosine distance in [0,2]; it is
// zero for exact metadata reads. Callers must not assume any result order
// from SimilarityQuery and should re-sort if they need one.
type Result struct {
	ID       string
	Text     string
	Document string
	Page     int
	DocType  string
	Distance float64
}

// RunSummary is the persisted audit record of one ingestion run.
type RunSummary struct {
	TotalChunks    int       `json:"total_chunks"`
	CoreDocs       int       `json:"core_docs"`
	ModuleDocs     int       `json:"module_docs"`
	EmbeddingModel string    `json:"embedding_model"`
	ChunkSize      int       `json:"chunk_size"`
	CreatedAt      time.Time `json:"created_at"`
}

// DimensionError reports a vector length that does not match the index.
// This is a configuration error (wrong embedding model), not a transient one.
type DimensionError struct {
	Want, Got int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: index has %d, got %d", e.Want, e.Got)
}

// Store is a SQLite-backed chunk index.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the index at the given path and runs
// pending migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

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

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Upsert writes a batch of records. Existing IDs are overwritten, which is
// what makes re-ingestion idempotent. All vectors in the batch must match
// the dimension already held by the index (if any).
func (s *Store) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	dim, err := s.dimension(ctx)
	if err != nil {
		return err
	}
	for _, r := range records {
		if dim == 0 {
			dim = len(r.Embedding)
		}
		if len(r.Embedding) != dim {
			return &DimensionError{Want: dim, Got: len(r.Embedding)}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document, page, doc_type, chunk_index, file_path, text, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			page = excluded.page,
			doc_type = excluded.doc_type,
			chunk_index = excluded.chunk_index,
			file_path = excluded.file_path,
			text = excluded.text,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, r := range records {
		_, err := stmt.ExecContext(ctx, r.ID, r.Document, r.Page, r.DocType,
			r.ChunkIndex, r.FilePath, r.Text, float32SliceToBytes(r.Embedding), now)
		if err != nil {
			return fmt.Errorf("upserting chunk %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// SimilarityQuery returns up to n records matching the filter, with cosine
// distance to the query vector. The scan is brute-force over the filtered
// candidate set, which is fine at this corpus size.
func (s *Store) SimilarityQuery(ctx context.Context, vector []float32, n int, f Filter) ([]Result, error) {
	if n <= 0 {
		return nil, nil
	}

	where, args := f.whereClause()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, document, page, doc_type, embedding FROM chunks`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var blob []byte
		if err := rows.Scan(&r.ID, &r.Text, &r.Document, &r.Page, &r.DocType, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		emb := bytesToFloat32Slice(blob)
		if len(emb) != len(vector) {
			return nil, &DimensionError{Want: len(emb), Got: len(vector)}
		}
		r.Distance = cosineDistance(vector, emb)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if len(results) > n {
		results = results[:n]
	}
	return results, nil
}

// ExactGet returns up to limit records matching the filter, with no vector
// comparison, ordered by page then chunk index.
func (s *Store) ExactGet(ctx context.Context, f Filter, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 100
	}

	where, args := f.whereClause()
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, document, page, doc_type FROM chunks`+where+`
		ORDER BY page ASC, chunk_index ASC LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("exact get: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Text, &r.Document, &r.Page, &r.DocType); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Count returns the total number of indexed records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// SaveRunSummary persists the audit record for an ingestion run.
func (s *Store) SaveRunSummary(ctx context.Context, sum RunSummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingestion_runs (total_chunks, core_docs, module_docs, embedding_model, chunk_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sum.TotalChunks, sum.CoreDocs, sum.ModuleDocs, sum.EmbeddingModel, sum.ChunkSize, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving run summary: %w", err)
	}
	return nil
}

// LatestRunSummary returns the most recent ingestion summary, or nil if no
// run has completed yet.
func (s *Store) LatestRunSummary(ctx context.Context) (*RunSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT total_chunks, core_docs, module_docs, embedding_model, chunk_size, created_at
		FROM ingestion_runs ORDER BY id DESC LIMIT 1`)

	var sum RunSummary
	err := row.Scan(&sum.TotalChunks, &sum.CoreDocs, &sum.ModuleDocs,
		&sum.EmbeddingModel, &sum.ChunkSize, &sum.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading run summary: %w", err)
	}
	return &sum, nil
}

// dimension reports the vector length held by the index, 0 if empty.
func (s *Store) dimension(ctx context.Context) (int, error) {
	var byteLen sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT length(embedding) FROM chunks LIMIT 1").Scan(&byteLen)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading index dimension: %w", err)
	}
	return int(byteLen.Int64) / 4, nil
}

func (f Filter) whereClause() (string, []any) {
	var conds []string
	var args []any
	if f.Document != "" {
		conds = append(conds, "document = ?")
		args = append(args, f.Document)
	}
	if f.Page > 0 {
		conds = append(conds, "page = ?")
		args = append(args, f.Page)
	}
	if f.DocType != "" {
		conds = append(conds, "doc_type = ?")
		args = append(args, f.DocType)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// cosineDistance is 1 - cosine similarity, in [0,2]. Degenerate zero-norm
// vectors get the maximum distance.
func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
