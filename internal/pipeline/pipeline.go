// Package pipeline resolves DOIs to badge identifiers: cache, Crossref
// metadata, credit-limited classification, and badge mapping.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matsen/doibadge/internal/badge"
	"github.com/matsen/doibadge/internal/doi"
	"github.com/matsen/doibadge/internal/logging"
	"github.com/matsen/doibadge/internal/paper"
)

// Store is the cache the processor reads and updates.
type Store interface {
	Lookup(doi string) (*paper.Entry, bool)
	PutMetadata(doi string, meta paper.Metadata) *paper.Entry
	AttachClassification(doi string, c paper.Classification) error
}

// MetadataFetcher resolves a DOI to bibliographic metadata.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, doi string) (paper.Metadata, error)
}

// Classifier assigns a classification label to a paper.
type Classifier interface {
	Classify(ctx context.Context, title, pdfURL string) (paper.Classification, error)
}

// Processor runs the lookup pipeline. Calls must not overlap on the same Store.
type Processor struct {
	store      Store
	fetcher    MetadataFetcher
	classifier Classifier
	log        *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		p.log = l
	}
}

// New creates a Processor.
func New(store Store, fetcher MetadataFetcher, classifier Classifier, opts ...Option) *Processor {
	p := &Processor{
		store:      store,
		fetcher:    fetcher,
		classifier: classifier,
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process resolves one DOI to a badge. It never returns an error; failures
// are logged and reported as StatusFailed on the Result.
func (p *Processor) Process(ctx context.Context, d string) Result {
	key := doi.Normalize(d)
	if key == "" {
		return Result{Status: StatusNoDOI}
	}

	entry, ok := p.store.Lookup(key)
	if ok && entry.Classified() {
		r := mapped(key, entry.Metadata.Title, entry.Classification.Label)
		r.Cached = true
		return r
	}

	r, err := p.resolve(ctx, key, entry)
	if err != nil {
		p.log.Error("pipeline.failed", "doi", key, "error", err)
		return failed(key, err)
	}
	return r
}

// resolve covers everything after the memoized path. entry may be nil.
func (p *Processor) resolve(ctx context.Context, key string, entry *paper.Entry) (Result, error) {
	cached := entry != nil
	if entry == nil {
		meta, err := p.fetcher.FetchMetadata(ctx, key)
		if err != nil {
			return Result{}, fmt.Errorf("fetching metadata: %w", err)
		}
		entry = p.store.PutMetadata(key, meta)
	}

	meta := entry.Metadata
	if !meta.HasTitle() {
		p.log.Debug("pipeline.skipped", "doi", key, "reason", StatusNoTitle)
		return Result{DOI: key, Status: StatusNoTitle, Cached: cached}, nil
	}
	if !meta.HasPDF() {
		p.log.Debug("pipeline.skipped", "doi", key, "reason", StatusNoPDF)
		return Result{DOI: key, Status: StatusNoPDF, Title: meta.Title, Cached: cached}, nil
	}

	c, err := p.classifier.Classify(ctx, meta.Title, meta.PDFURL)
	if err != nil {
		return Result{}, fmt.Errorf("classifying: %w", err)
	}
	if err := p.store.AttachClassification(key, c); err != nil {
		return Result{}, err
	}

	return mapped(key, meta.Title, c.Label), nil
}

// mapped builds the result for a classified DOI.
func mapped(key, title, label string) Result {
	r := Result{DOI: key, Label: label, Title: title, Status: StatusUnmapped}
	if id, ok := badge.ForLabel(label); ok {
		r.Badge = id
		r.Status = StatusBadged
	}
	return r
}

// ProcessText extracts the first DOI from text and processes it.
func (p *Processor) ProcessText(ctx context.Context, text string) Result {
	d, ok := doi.Extract(text)
	if !ok {
		return Result{Status: StatusNoDOI}
	}
	return p.Process(ctx, d)
}

// ProcessAll processes DOIs one after another. It stops early only when ctx
// is done; the remaining DOIs are reported as failed with the context error.
func (p *Processor) ProcessAll(ctx context.Context, dois []string) []Result {
	results := make([]Result, 0, len(dois))
	for _, d := range dois {
		if err := ctx.Err(); err != nil {
			results = append(results, failed(doi.Normalize(d), err))
			continue
		}
		results = append(results, p.Process(ctx, d))
	}
	return results
}
