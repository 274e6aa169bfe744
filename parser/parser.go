// Package parser extracts the embedded bootstrap payload from listing page
// markup and maps it into the canonical Listing record.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/harwood/go-scrape-listings/models"
)

const (
	// payloadOrdinal is the 1-based position of the script block carrying
	// the bootstrap payload. There is no structural anchor (id or key) to
	// select on; the position is an assumption about page layout, and any
	// page with fewer blocks is treated as throttling.
	payloadOrdinal = 3

	// The payload is wrapped in HTML comment markers: 4 leading bytes
	// ("<!--") and 3 trailing bytes ("-->").
	wrapperPrefixLen = 4
	wrapperSuffixLen = 3
)

// ExtractPayload locates the bootstrap payload among the page's JSON script
// blocks, strips the comment wrapper, and decodes it. Numbers are kept as
// json.Number so their literal form survives into the store.
func ExtractPayload(body []byte) (map[string]interface{}, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, ExtractionError{Err: fmt.Errorf("parse html: %w", err)}
	}

	var blocks []string
	doc.Find(`script[type="application/json"]`).Each(func(_ int, sel *goquery.Selection) {
		blocks = append(blocks, sel.Text())
	})

	if len(blocks) < payloadOrdinal {
		return nil, ThrottledError{Found: len(blocks), Want: payloadOrdinal}
	}

	raw := blocks[payloadOrdinal-1]
	if len(raw) < wrapperPrefixLen+wrapperSuffixLen {
		return nil, ExtractionError{Err: fmt.Errorf("payload block too short (%d bytes)", len(raw))}
	}
	raw = raw[wrapperPrefixLen : len(raw)-wrapperSuffixLen]

	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		return nil, ExtractionError{Err: fmt.Errorf("decode payload: %w", err)}
	}
	return payload, nil
}

// MapListing navigates bootstrapData.listing and projects the listing
// fields. Any absent required field fails the whole record.
func MapListing(url string, payload map[string]interface{}) (*models.Listing, error) {
	bootstrap, err := childObject(payload, "bootstrapData")
	if err != nil {
		return nil, err
	}
	listing, err := childObject(bootstrap, "listing")
	if err != nil {
		return nil, err
	}

	name, err := stringField(listing, "name")
	if err != nil {
		return nil, err
	}
	market, err := stringField(listing, "market")
	if err != nil {
		return nil, err
	}

	reviews, err := childObject(listing, "review_details_interface")
	if err != nil {
		return nil, err
	}
	rating, err := numberField(reviews, "review_score")
	if err != nil {
		return nil, err
	}
	reviewCount, err := numberField(reviews, "review_count")
	if err != nil {
		return nil, err
	}

	propertyType, err := stringField(listing, "room_and_property_type")
	if err != nil {
		return nil, err
	}
	bedLabel, err := stringField(listing, "bed_label")
	if err != nil {
		return nil, err
	}
	bathLabel, err := stringField(listing, "bathroom_label")
	if err != nil {
		return nil, err
	}
	guestLabel, err := stringField(listing, "guest_label")
	if err != nil {
		return nil, err
	}
	price, err := stringField(listing, "price_formatted_for_embed")
	if err != nil {
		return nil, err
	}
	description, err := stringField(listing, "description")
	if err != nil {
		return nil, err
	}

	photoURL, err := coverPhotoURL(listing)
	if err != nil {
		return nil, err
	}
	amenities, err := presentAmenities(listing)
	if err != nil {
		return nil, err
	}

	return &models.Listing{
		URL:          url,
		Name:         name,
		Market:       market,
		Rating:       rating,
		ReviewCount:  reviewCount,
		PropertyType: propertyType,
		BedLabel:     bedLabel,
		BathLabel:    bathLabel,
		GuestLabel:   guestLabel,
		Price:        price,
		PhotoURL:     photoURL,
		Description:  description,
		Amenities:    amenities,
	}, nil
}

// coverPhotoURL takes the first photo's large cover and drops its query
// string.
func coverPhotoURL(listing map[string]interface{}) (string, error) {
	photos, err := objectList(listing, "photos")
	if err != nil {
		return "", err
	}
	if len(photos) == 0 {
		return "", FieldMissingError{Field: "photos"}
	}
	cover, err := stringField(photos[0], "large_cover")
	if err != nil {
		return "", err
	}
	return strings.SplitN(cover, "?", 2)[0], nil
}

// presentAmenities keeps the names of amenities flagged as present, in
// source order.
func presentAmenities(listing map[string]interface{}) ([]string, error) {
	items, err := objectList(listing, "listing_amenities")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, item := range items {
		present, ok := item["is_present"].(bool)
		if !ok {
			return nil, FieldMissingError{Field: "listing_amenities.is_present"}
		}
		if !present {
			continue
		}
		name, err := stringField(item, "name")
		if err != nil {
			return nil, FieldMissingError{Field: "listing_amenities.name"}
		}
		names = append(names, name)
	}
	return names, nil
}

func childObject(obj map[string]interface{}, field string) (map[string]interface{}, error) {
	child, ok := obj[field].(map[string]interface{})
	if !ok {
		return nil, FieldMissingError{Field: field}
	}
	return child, nil
}

func stringField(obj map[string]interface{}, field string) (string, error) {
	value, ok := obj[field].(string)
	if !ok {
		return "", FieldMissingError{Field: field}
	}
	return value, nil
}

func numberField(obj map[string]interface{}, field string) (string, error) {
	value, ok := obj[field].(json.Number)
	if !ok {
		return "", FieldMissingError{Field: field}
	}
	return value.String(), nil
}

func objectList(obj map[string]interface{}, field string) ([]map[string]interface{}, error) {
	raw, ok := obj[field].([]interface{})
	if !ok {
		return nil, FieldMissingError{Field: field}
	}
	items := make([]map[string]interface{}, 0, len(raw))
	for _, entry := range raw {
		item, ok := entry.(map[string]interface{})
		if !ok {
			return nil, FieldMissingError{Field: field}
		}
		items = append(items, item)
	}
	return items, nil
}
