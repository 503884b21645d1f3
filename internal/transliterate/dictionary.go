package transliterate

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Dictionary is a SQLite backed store of word to kana mappings.
// Lookups ignore the case of the Latin word.
type Dictionary struct {
	db *sql.DB
}

// Open opens the dictionary at path, creating the file and schema if needed.
func Open(path string) (*Dictionary, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create dictionary directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS words (
		word TEXT PRIMARY KEY COLLATE NOCASE,
		kana TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create dictionary schema: %w", err)
	}

	return &Dictionary{db: db}, nil
}

// Close closes the underlying database.
func (d *Dictionary) Close() error {
	return d.db.Close()
}

// Transliterate implements Transliterator.
func (d *Dictionary) Transliterate(ctx context.Context, token string) (string, bool, error) {
	var kana string
	err := d.db.QueryRowContext(ctx, `SELECT kana FROM words WHERE word = ?`, token).Scan(&kana)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("dictionary lookup failed: %w", err)
	}
	return kana, true, nil
}

// Add stores or replaces the rendering of word.
func (d *Dictionary) Add(ctx context.Context, word, kana string) error {
	word = strings.TrimSpace(word)
	kana = strings.TrimSpace(kana)
	if word == "" || kana == "" {
		return fmt.Errorf("word and kana must not be empty")
	}

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO words (word, kana) VALUES (?, ?)
		 ON CONFLICT(word) DO UPDATE SET kana = excluded.kana`, word, kana)
	if err != nil {
		return fmt.Errorf("failed to add %q: %w", word, err)
	}
	return nil
}

// Count returns the number of stored words.
func (d *Dictionary) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count dictionary entries: %w", err)
	}
	return n, nil
}

// ImportCSV adds the "word,kana" rows of a CSV file in a single transaction
// and returns the number of imported rows. Rows starting with '#' and rows
// with fewer than two non-empty fields are skipped.
func (d *Dictionary) ImportCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open dictionary source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO words (word, kana) VALUES (?, ?)
		 ON CONFLICT(word) DO UPDATE SET kana = excluded.kana`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	imported := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		if len(record) < 2 {
			continue
		}
		word, kana := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		if word == "" || kana == "" {
			line, _ := r.FieldPos(0)
			slog.Debug("Skipping incomplete dictionary row", "file", path, "line", line)
			continue
		}

		if _, err := stmt.ExecContext(ctx, word, kana); err != nil {
			return 0, fmt.Errorf("failed to import %q: %w", word, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return imported, nil
}
