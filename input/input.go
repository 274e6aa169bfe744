// Package input normalizes the URL list handed to the scrape core.
package input

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/harwood/go-scrape-listings/scraper"
)

// dedupeSize bounds the seen-URL cache so pathological input files cannot
// grow memory without limit.
const dedupeSize = 100000

// Load resolves source into a deduplicated list of validated listing URLs.
// When source names an existing file it is read line by line, skipping blank
// lines and # comments. Otherwise source itself must be a single valid URL.
func Load(source string) ([]string, error) {
	file, err := os.Open(source)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("open url list: %w", err)
		}
		if err := validateURL(source); err != nil {
			return nil, err
		}
		return []string{strings.TrimSpace(source)}, nil
	}
	defer file.Close()

	seen, err := lru.New[string, struct{}](dedupeSize)
	if err != nil {
		return nil, fmt.Errorf("init dedupe cache: %w", err)
	}

	var urls []string
	entries := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries++
		if err := validateURL(line); err != nil {
			// A bad first entry is a startup error. Later bad entries are
			// carried through and fail per-URL at fetch time, so one typo
			// in a long list does not discard the rest of the run.
			if entries == 1 {
				return nil, err
			}
			slog.Warn("invalid url in list, will fail at fetch",
				slog.String("url", line),
				slog.Any("error", err),
			)
		}
		if seen.Contains(line) {
			continue
		}
		seen.Add(line, struct{}{})
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return urls, nil
}

func validateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil {
		return scraper.MalformedURLError{URL: raw, Err: err}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return scraper.MalformedURLError{URL: raw, Err: fmt.Errorf("unsupported scheme %q", parsed.Scheme)}
	}
	if parsed.Host == "" {
		return scraper.MalformedURLError{URL: raw, Err: fmt.Errorf("missing host")}
	}
	return nil
}
