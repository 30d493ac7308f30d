package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lectern/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

const (
	dbFileName  = "index.db"
	tmpFileName = "index.db.tmp"
)

// IndexStorage stores whole-index snapshots in a SQLite file.
type IndexStorage struct {
	dir string
}

var _ driven.IndexStorage = (*IndexStorage)(nil)

// NewIndexStorage creates storage rooted at dir.
// If dir is empty, defaults to ~/.lectern/index.
func NewIndexStorage(dir string) (*IndexStorage, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".lectern", "index")
	}
	return &IndexStorage{dir: dir}, nil
}

// Path returns the database file path.
func (s *IndexStorage) Path() string {
	return filepath.Join(s.dir, dbFileName)
}

// Exists reports whether a snapshot has been written.
func (s *IndexStorage) Exists() bool {
	info, err := os.Stat(s.Path())
	return err == nil && !info.IsDir()
}

// Load reads the persisted manifest and entries ordered by insertion.
func (s *IndexStorage) Load(ctx context.Context) (domain.IndexManifest, []domain.IndexEntry, error) {
	var manifest domain.IndexManifest

	if !s.Exists() {
		return manifest, nil, fmt.Errorf("%w: no index at %s", domain.ErrIndexNotReady, s.Path())
	}

	db, err := openDB(s.Path())
	if err != nil {
		return manifest, nil, err
	}
	defer db.Close()

	var updatedAt string
	row := db.QueryRowContext(ctx,
		`SELECT embedding_model, dimensions, entries, updated_at FROM manifest WHERE id = 1`)
	if err := row.Scan(&manifest.EmbeddingModel, &manifest.Dimensions, &manifest.Entries, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return manifest, nil, fmt.Errorf("%w: index manifest missing", domain.ErrPersist)
		}
		return manifest, nil, fmt.Errorf("reading manifest: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		manifest.UpdatedAt = t
	}

	rows, err := db.QueryContext(ctx,
		`SELECT seq, chunk_id, text, metadata, embedding FROM entries ORDER BY seq`)
	if err != nil {
		return manifest, nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.IndexEntry, 0, manifest.Entries)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return manifest, nil, err
		}
		if len(entry.Embedding) != manifest.Dimensions {
			return manifest, nil, fmt.Errorf("%w: entry %s has %d dimensions, manifest says %d",
				domain.ErrPersist, entry.ChunkID, len(entry.Embedding), manifest.Dimensions)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return manifest, nil, fmt.Errorf("iterating entries: %w", err)
	}

	return manifest, entries, nil
}

// Save writes the snapshot to a temporary database and renames it into place.
func (s *IndexStorage) Save(ctx context.Context, manifest domain.IndexManifest, entries []domain.IndexEntry) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("%w: creating index directory: %v", domain.ErrPersist, err)
	}

	tmpPath := filepath.Join(s.dir, tmpFileName)
	if err := removeIfExists(tmpPath); err != nil {
		return fmt.Errorf("%w: clearing stale snapshot: %v", domain.ErrPersist, err)
	}

	if err := writeSnapshot(ctx, tmpPath, manifest, entries); err != nil {
		_ = removeIfExists(tmpPath)
		return fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}

	if err := os.Rename(tmpPath, s.Path()); err != nil {
		_ = removeIfExists(tmpPath)
		return fmt.Errorf("%w: replacing index: %v", domain.ErrPersist, err)
	}
	return nil
}

// Remove deletes the snapshot and any leftover temporary file.
func (s *IndexStorage) Remove(_ context.Context) error {
	for _, name := range []string{dbFileName, tmpFileName} {
		if err := removeIfExists(filepath.Join(s.dir, name)); err != nil {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return nil
}

func writeSnapshot(ctx context.Context, path string, manifest domain.IndexManifest, entries []domain.IndexEntry) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	updatedAt := manifest.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO manifest (id, embedding_model, dimensions, entries, updated_at) VALUES (1, ?, ?, ?, ?)`,
		manifest.EmbeddingModel, manifest.Dimensions, len(entries), updatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (seq, chunk_id, text, metadata, embedding) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range entries {
		entry := &entries[i]
		metadataJSON, err := encodeMetadata(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %s: %w", entry.ChunkID, err)
		}
		if _, err := stmt.ExecContext(ctx, entry.Seq, entry.ChunkID, entry.Text,
			string(metadataJSON), float32SliceToBytes(entry.Embedding)); err != nil {
			return fmt.Errorf("saving entry %s: %w", entry.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// migrate runs all pending migrations.
func migrate(db *sql.DB, fsys fs.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	dirEntries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range dirEntries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_index.up.sql" -> 1
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
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

func scanEntry(rows *sql.Rows) (*domain.IndexEntry, error) {
	var entry domain.IndexEntry
	var metadataJSON string
	var blob []byte

	if err := rows.Scan(&entry.Seq, &entry.ChunkID, &entry.Text, &metadataJSON, &blob); err != nil {
		return nil, fmt.Errorf("scanning entry: %w", err)
	}

	metadata, err := decodeMetadata(metadataJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata for %s: %v", domain.ErrPersist, entry.ChunkID, err)
	}
	entry.Metadata = metadata
	entry.Embedding = bytesToFloat32Slice(blob)
	return &entry, nil
}

// encodeMetadata marshals metadata, writing whole floats as "2.0" so they
// are not read back as int.
func encodeMetadata(metadata map[string]any) ([]byte, error) {
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		switch f := v.(type) {
		case float64:
			out[k] = floatNumber(strconv.FormatFloat(f, 'g', -1, 64))
		case float32:
			out[k] = floatNumber(strconv.FormatFloat(float64(f), 'g', -1, 32))
		default:
			out[k] = v
		}
	}
	return json.Marshal(out)
}

func floatNumber(s string) json.Number {
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return json.Number(s)
}

// decodeMetadata restores numbers written without a fraction or exponent as
// int and all others as float64, so page numbers and scores round-trip with
// the type they were stored with.
func decodeMetadata(raw string) (map[string]any, error) {
	if raw == "" || raw == "null" {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var metadata map[string]any
	if err := dec.Decode(&metadata); err != nil {
		return nil, err
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	for k, v := range metadata {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if !strings.ContainsAny(n.String(), ".eE") {
			if i, err := n.Int64(); err == nil {
				metadata[k] = int(i)
				continue
			}
		}
		if f, err := n.Float64(); err == nil {
			metadata[k] = f
		}
	}
	return metadata, nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
