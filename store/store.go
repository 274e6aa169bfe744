// Package store persists listings to an embedded SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harwood/go-scrape-listings/models"
)

// busyTimeoutMs makes concurrent writers wait on SQLite's write lock
// instead of failing with SQLITE_BUSY.
const busyTimeoutMs = 5000

const schema = `CREATE TABLE IF NOT EXISTS listings (
	url text,
	name text,
	market text,
	rating num,
	review_count num,
	type text,
	bed text,
	bath text,
	guest text,
	price text,
	photo_url text,
	description text,
	amenities text
)`

const insertSQL = `INSERT INTO listings VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Store wraps the shared SQLite database file. Workers write through
// dedicated sessions; SQLite's own locking serializes them.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", path, busyTimeoutMs)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// EnsureSchema creates the listings table if absent. Safe to call on an
// existing database.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create listings table: %w", err)
	}
	return nil
}

// Session pins a dedicated connection for one worker.
func (s *Store) Session(ctx context.Context) (*Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{conn: conn}, nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM listings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return count, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Session is a per-worker connection to the shared store.
type Session struct {
	conn *sql.Conn
}

// Insert appends one row. Every insert commits immediately; there is no
// batching, no upsert, and no uniqueness on url, so re-scraping a URL
// appends a duplicate row.
func (sess *Session) Insert(ctx context.Context, listing *models.Listing) error {
	_, err := sess.conn.ExecContext(ctx, insertSQL,
		listing.URL,
		listing.Name,
		listing.Market,
		listing.Rating,
		listing.ReviewCount,
		listing.PropertyType,
		listing.BedLabel,
		listing.BathLabel,
		listing.GuestLabel,
		listing.Price,
		listing.PhotoURL,
		listing.Description,
		listing.AmenitiesColumn(),
	)
	if err != nil {
		return fmt.Errorf("insert listing %q: %w", listing.URL, err)
	}
	return nil
}

// Close releases the pinned connection back to the pool.
func (sess *Session) Close() error {
	return sess.conn.Close()
}
