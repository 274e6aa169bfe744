// Package queue provides the shared work queue drained by scrape workers.
package queue

import "sync"

// Queue is a concurrency-safe FIFO of pending URLs. It is filled once
// during setup and drained monotonically; failed URLs are never re-queued.
type Queue struct {
	mu   sync.Mutex
	urls []string
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{}
}

// Put appends a URL. Called single-threaded before workers start.
func (q *Queue) Put(url string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.urls = append(q.urls, url)
}

// TryGet pops the next URL without blocking. ok is false once the queue
// is empty.
func (q *Queue) TryGet() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.urls) == 0 {
		return "", false
	}

	url := q.urls[0]
	q.urls = q.urls[1:]
	return url, true
}

// Len returns the number of pending URLs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.urls)
}
