package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/harwood/go-scrape-listings/models"
)

func sampleListing(url string) *models.Listing {
	return &models.Listing{
		URL:          url,
		Name:         "Cozy Loft",
		Market:       "Lisbon",
		Rating:       "97",
		ReviewCount:  "128",
		PropertyType: "Entire loft",
		BedLabel:     "2 beds",
		BathLabel:    "1 bath",
		GuestLabel:   "4 guests",
		Price:        "$120",
		PhotoURL:     "https://img.example.test/p1.jpg",
		Description:  "A cozy loft near the river.",
		Amenities:    []string{"Wifi", "Kitchen"},
	}
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return st, path
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	st, _ := openTestStore(t)
	if err := st.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second EnsureSchema should be a no-op, got %v", err)
	}
}

func TestInsertAndReadBack(t *testing.T) {
	st, path := openTestStore(t)
	ctx := context.Background()

	session, err := st.Session(ctx)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer session.Close()

	listing := sampleListing("http://example.test/rooms/42")
	if err := session.Insert(ctx, listing); err != nil {
		t.Fatalf("insert: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()

	var (
		url, name, market, rating, reviewCount, propertyType string
		bed, bath, guest, price, photoURL, description       string
		amenities                                            string
	)
	row := db.QueryRow(`SELECT url, name, market, rating, review_count, type, bed, bath, guest, price, photo_url, description, amenities FROM listings`)
	if err := row.Scan(&url, &name, &market, &rating, &reviewCount, &propertyType,
		&bed, &bath, &guest, &price, &photoURL, &description, &amenities); err != nil {
		t.Fatalf("scan row: %v", err)
	}

	if url != listing.URL || name != listing.Name || market != listing.Market {
		t.Fatalf("row = %q/%q/%q, want %q/%q/%q", url, name, market, listing.URL, listing.Name, listing.Market)
	}
	if rating != "97" || reviewCount != "128" {
		t.Fatalf("rating/review_count = %q/%q, want 97/128", rating, reviewCount)
	}
	if amenities != "Wifi,Kitchen" {
		t.Fatalf("amenities = %q, want comma-joined list", amenities)
	}
}

func TestInsertAppendsDuplicateRows(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	session, err := st.Session(ctx)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer session.Close()

	listing := sampleListing("http://example.test/rooms/42")
	if err := session.Insert(ctx, listing); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := session.Insert(ctx, listing); err != nil {
		t.Fatalf("second insert: %v", err)
	}

	count, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2 (append-only, no dedup)", count)
	}
}

func TestConcurrentSessions(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	const workers = 4
	const perWorker = 10

	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func(id int) {
			session, err := st.Session(ctx)
			if err != nil {
				errCh <- err
				return
			}
			defer session.Close()
			for j := 0; j < perWorker; j++ {
				listing := sampleListing("http://example.test/rooms/42")
				if err := session.Insert(ctx, listing); err != nil {
					errCh <- err
					return
				}
			}
			errCh <- nil
		}(i)
	}
	for i := 0; i < workers; i++ {
		if err := <-errCh; err != nil {
			t.Fatalf("worker insert: %v", err)
		}
	}

	count, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != workers*perWorker {
		t.Fatalf("count = %d, want %d", count, workers*perWorker)
	}
}
