// Package models defines data structures for the scraper.
package models

import (
	"strings"
	"time"
)

// Listing is the canonical flattened record extracted from one listing page.
// Rating and ReviewCount keep the exact numeric literal from the page
// payload, so "97" stays "97" and "4.5" stays "4.5".
type Listing struct {
	URL          string   `json:"url"`
	Name         string   `json:"name"`
	Market       string   `json:"market"`
	Rating       string   `json:"rating"`
	ReviewCount  string   `json:"review_count"`
	PropertyType string   `json:"type"`
	BedLabel     string   `json:"bed"`
	BathLabel    string   `json:"bath"`
	GuestLabel   string   `json:"guest"`
	Price        string   `json:"price"`
	PhotoURL     string   `json:"photo_url"`
	Description  string   `json:"description"`
	Amenities    []string `json:"amenities"`
}

// AmenitiesColumn renders the amenity list the way it is persisted.
func (l *Listing) AmenitiesColumn() string {
	return strings.Join(l.Amenities, ",")
}

// ScrapeResult holds the overall outcome of one run.
type ScrapeResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Workers      int
	Stored       int
	ErrorCount   int
	FailedURLs   []string
	ErrorsByType map[string]int
}
