// Package cache persists DOI lookups and the classification credit counter
// in a single JSON document.
//
// The Store is not safe for concurrent use. One lookup is expected to be in
// flight at a time against a given Store.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/matsen/doibadge/internal/doi"
	"github.com/matsen/doibadge/internal/logging"
	"github.com/matsen/doibadge/internal/paper"
)

// errorBuffer is the capacity of the persistence-failure channel.
const errorBuffer = 16

// ErrNoEntry is returned when a classification is attached to a DOI without metadata.
var ErrNoEntry = errors.New("no cached metadata for DOI")

// Data is the persisted document.
type Data struct {
	Entries     map[string]*paper.Entry `json:"entries"`
	CreditsUsed int                     `json:"creditsUsed"`
	LastUpdated time.Time               `json:"lastUpdated"`
}

// Stats summarizes the store.
type Stats struct {
	TotalEntries     int `json:"totalEntries"`
	Classified       int `json:"classified"`
	CreditsUsed      int `json:"creditsUsed"`
	CreditLimit      int `json:"creditLimit"`
	CreditsRemaining int `json:"creditsRemaining"`
}

// Store is the file-backed DOI cache.
type Store struct {
	path        string
	data        Data
	creditLimit int
	now         func() time.Time
	log         *slog.Logger
	errs        chan error
}

// Option configures a Store.
type Option func(*Store)

// WithCreditLimit sets the limit reported by Stats.
func WithCreditLimit(n int) Option {
	return func(s *Store) {
		s.creditLimit = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithClock overrides time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store backed by the file at path. Call Load before use.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path: path,
		data: emptyData(),
		now:  time.Now,
		log:  logging.Discard(),
		errs: make(chan error, errorBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func emptyData() Data {
	return Data{Entries: make(map[string]*paper.Entry)}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Errors delivers persistence failures that Load and Save swallow.
// Failures are dropped when nobody drains the channel and it is full.
func (s *Store) Errors() <-chan error {
	return s.errs
}

// report logs a swallowed failure and publishes it on the error channel.
func (s *Store) report(event string, err error) {
	s.log.Error(event, "path", s.path, "error", err)
	select {
	case s.errs <- err:
	default:
	}
}

// Load reads the store from disk. A missing file yields an empty store that
// is written out immediately. Other failures are reported and the in-memory
// state is kept.
func (s *Store) Load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = emptyData()
			s.log.Info("cache.created", "path", s.path)
			s.Save()
			return
		}
		s.report("cache.load_failed", fmt.Errorf("reading cache: %w", err))
		return
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		s.report("cache.load_failed", fmt.Errorf("parsing cache: %w", err))
		return
	}
	if data.Entries == nil {
		data.Entries = make(map[string]*paper.Entry)
	}

	// Keys are lower-case even when the file was edited by hand.
	entries := make(map[string]*paper.Entry, len(data.Entries))
	for key, e := range data.Entries {
		if e == nil {
			continue
		}
		k := doi.Normalize(key)
		e.DOI = k
		entries[k] = e
	}
	data.Entries = entries

	s.data = data
	s.log.Debug("cache.loaded", "path", s.path, "entries", len(entries), "credits_used", data.CreditsUsed)
}

// Save stamps LastUpdated and writes the whole store. Failures are reported, not returned.
func (s *Store) Save() {
	s.data.LastUpdated = s.now().UTC()

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		s.report("cache.save_failed", fmt.Errorf("encoding cache: %w", err))
		return
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			s.report("cache.save_failed", fmt.Errorf("creating cache directory: %w", err))
			return
		}
	}

	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		s.report("cache.save_failed", fmt.Errorf("writing cache: %w", err))
	}
}

// Lookup returns the cached entry for a DOI.
func (s *Store) Lookup(d string) (*paper.Entry, bool) {
	e, ok := s.data.Entries[doi.Normalize(d)]
	return e, ok
}

// PutMetadata creates an entry for a DOI with fresh metadata and persists it.
// An existing entry, including any classification, is replaced.
func (s *Store) PutMetadata(d string, meta paper.Metadata) *paper.Entry {
	key := doi.Normalize(d)
	e := &paper.Entry{
		DOI:         key,
		Metadata:    meta,
		ProcessedAt: s.now().UTC(),
	}
	s.data.Entries[key] = e
	s.Save()
	return e
}

// AttachClassification adds a classification to an existing entry and persists it.
func (s *Store) AttachClassification(d string, c paper.Classification) error {
	e, ok := s.data.Entries[doi.Normalize(d)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoEntry, d)
	}
	e.Classification = &c
	s.Save()
	return nil
}

// Entries returns a copy of every cached entry, sorted by DOI.
func (s *Store) Entries() []paper.Entry {
	out := make([]paper.Entry, 0, len(s.data.Entries))
	for _, e := range s.data.Entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DOI < out[j].DOI
	})
	return out
}

// CreditsUsed returns the number of classification credits spent so far.
func (s *Store) CreditsUsed() int {
	return s.data.CreditsUsed
}

// SpendCredit increments the credit counter and persists synchronously.
func (s *Store) SpendCredit() {
	s.data.CreditsUsed++
	s.Save()
}

// LastUpdated returns the time of the most recent Save.
func (s *Store) LastUpdated() time.Time {
	return s.data.LastUpdated
}

// Stats summarizes the store.
func (s *Store) Stats() Stats {
	classified := 0
	for _, e := range s.data.Entries {
		if e.Classified() {
			classified++
		}
	}
	remaining := s.creditLimit - s.data.CreditsUsed
	if remaining < 0 {
		remaining = 0
	}
	return Stats{
		TotalEntries:     len(s.data.Entries),
		Classified:       classified,
		CreditsUsed:      s.data.CreditsUsed,
		CreditLimit:      s.creditLimit,
		CreditsRemaining: remaining,
	}
}
