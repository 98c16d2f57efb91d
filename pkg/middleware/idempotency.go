package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	apperrors "bloodbank/pkg/errors"
	httputil "bloodbank/pkg/http"
)

// ReplayState is the outcome of reserving an idempotency key.
type ReplayState int

const (
	// ReplayNone means the key was free and is now reserved for the caller.
	ReplayNone ReplayState = iota
	// ReplayCached means a finished response exists for the key.
	ReplayCached
	// ReplayInFlight means another request holds the key right now.
	ReplayInFlight
	// ReplayMismatch means the key was used with a different request body.
	ReplayMismatch
)

type IdempotencyStore interface {
	// Reserve claims key for a request with the given body fingerprint.
	Reserve(key, fingerprint string) (ReplayState, *CachedResponse)
	// Complete stores the response and releases the reservation.
	Complete(key string, response *CachedResponse)
	// Release drops the reservation without storing anything.
	Release(key string)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

type idempotencyEntry struct {
	fingerprint string
	response    *CachedResponse
	expiresAt   time.Time
}

// InMemoryIdempotencyStore keeps reservations and finished responses in
// process memory. Pending reservations expire with the same TTL so a crashed
// handler cannot hold a key forever.
type InMemoryIdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries: make(map[string]*idempotencyEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *InMemoryIdempotencyStore) Reserve(key, fingerprint string) (ReplayState, *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		switch {
		case e.fingerprint != fingerprint:
			return ReplayMismatch, nil
		case e.response == nil:
			return ReplayInFlight, nil
		default:
			return ReplayCached, e.response
		}
	}

	s.entries[key] = &idempotencyEntry{fingerprint: fingerprint, expiresAt: now.Add(s.ttl)}
	return ReplayNone, nil
}

func (s *InMemoryIdempotencyStore) Complete(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.response = response
		e.expiresAt = s.now().Add(s.ttl)
	}
}

func (s *InMemoryIdempotencyStore) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && e.response == nil {
		delete(s.entries, key)
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	interval := min(s.ttl, time.Hour)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			for key, e := range s.entries {
				if !now.Before(e.expiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency guards POSTs that carry headerName. A finished 2xx response is
// replayed for the same key, path and body. A duplicate that arrives while
// the first request is still running gets 409 instead of running the
// transition twice, and reusing a key with another body gets 422. Failed
// responses release the key so the client can retry.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = "Idempotency-Key"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerName)
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			key = r.URL.Path + " " + key

			body, err := io.ReadAll(r.Body)
			if err != nil {
				_ = httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			state, cached := store.Reserve(key, fingerprint(body))
			switch state {
			case ReplayCached:
				replay(w, cached)
				return
			case ReplayInFlight:
				_ = httputil.WriteError(w, apperrors.Conflict("A request with this idempotency key is still in progress"))
				return
			case ReplayMismatch:
				_ = httputil.WriteError(w, apperrors.Validation("Idempotency key was already used with a different request body", map[string]any{
					"header": headerName,
				}))
				return
			}

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}
			completed := false
			defer func() {
				if !completed {
					store.Release(key)
				}
			}()

			next.ServeHTTP(capture, r)

			if capture.statusCode >= 200 && capture.statusCode < 300 {
				store.Complete(key, &CachedResponse{
					StatusCode: capture.statusCode,
					Headers:    w.Header().Clone(),
					Body:       capture.body.Bytes(),
				})
				completed = true
			}
		})
	}
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func replay(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		if key == RequestIDHeader {
			continue
		}
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
