package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/doibadge/internal/paper"
)

var fixedTime = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func readData(t *testing.T, path string) Data {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return d
}

func TestLoad_MissingFileCreatesEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	s := New(path, WithClock(fixedClock))
	s.Load()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cache file not created: %v", err)
	}
	d := readData(t, path)
	if len(d.Entries) != 0 || d.CreditsUsed != 0 {
		t.Errorf("new cache = %+v, want empty", d)
	}
	if !d.LastUpdated.Equal(fixedTime) {
		t.Errorf("LastUpdated = %v, want %v", d.LastUpdated, fixedTime)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s := New(path, WithClock(fixedClock))
	s.Load()
	s.PutMetadata("10.1038/Nature12373", paper.Metadata{Title: "Thermometry", PDFURL: "https://x/y.pdf", Year: 2013})
	if err := s.AttachClassification("10.1038/nature12373", paper.Classification{Label: "Normal Science"}); err != nil {
		t.Fatalf("AttachClassification() error = %v", err)
	}
	s.SpendCredit()

	reloaded := New(path)
	reloaded.Load()

	e, ok := reloaded.Lookup("10.1038/NATURE12373")
	if !ok {
		t.Fatal("entry not found after reload")
	}
	if e.DOI != "10.1038/nature12373" {
		t.Errorf("DOI = %q, want lower-case", e.DOI)
	}
	if e.Metadata.Title != "Thermometry" || e.Metadata.Year != 2013 {
		t.Errorf("Metadata = %+v", e.Metadata)
	}
	if !e.Classified() || e.Classification.Label != "Normal Science" {
		t.Errorf("Classification = %+v", e.Classification)
	}
	if !e.ProcessedAt.Equal(fixedTime) {
		t.Errorf("ProcessedAt = %v, want %v", e.ProcessedAt, fixedTime)
	}
	if reloaded.CreditsUsed() != 1 {
		t.Errorf("CreditsUsed() = %d, want 1", reloaded.CreditsUsed())
	}
}

func TestLoad_NormalizesKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	doc := `{"entries":{"10.1234/ABC":{"doi":"10.1234/ABC","metadata":{"title":"T"},"processedAt":"2024-01-01T00:00:00Z"}},"creditsUsed":4,"lastUpdated":"2024-01-01T00:00:00Z"}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	s := New(path)
	s.Load()
	e, ok := s.Lookup("10.1234/abc")
	if !ok {
		t.Fatal("mixed-case key not normalized")
	}
	if e.DOI != "10.1234/abc" {
		t.Errorf("DOI = %q", e.DOI)
	}
	if s.CreditsUsed() != 4 {
		t.Errorf("CreditsUsed() = %d, want 4", s.CreditsUsed())
	}
}

func TestLoad_MalformedFileIsReportedAndSwallowed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := New(path)
	s.Load()

	select {
	case err := <-s.Errors():
		if err == nil {
			t.Error("nil error on channel")
		}
	default:
		t.Fatal("expected a load failure on Errors()")
	}

	if st := s.Stats(); st.TotalEntries != 0 || st.CreditsUsed != 0 {
		t.Errorf("Stats() = %+v, want empty", st)
	}
	// The unreadable file is left alone.
	raw, _ := os.ReadFile(path)
	if string(raw) != "{not json" {
		t.Errorf("malformed cache overwritten: %q", raw)
	}
}

func TestSave_FailureIsReportedNotFatal(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	// Parent of the cache path is a regular file, so the write must fail.
	s := New(filepath.Join(blocker, "cache.json"))

	e := s.PutMetadata("10.1234/x", paper.Metadata{Title: "T"})
	if e == nil {
		t.Fatal("PutMetadata returned nil")
	}

	select {
	case <-s.Errors():
	default:
		t.Fatal("expected a save failure on Errors()")
	}

	// In-memory state is still usable.
	if _, ok := s.Lookup("10.1234/x"); !ok {
		t.Error("entry lost after failed save")
	}
}

func TestErrorsChannelDoesNotBlock(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	s := New(filepath.Join(blocker, "cache.json"))
	for i := 0; i < errorBuffer*2; i++ {
		s.Save()
	}
	if got := len(s.Errors()); got != errorBuffer {
		t.Errorf("buffered errors = %d, want %d", got, errorBuffer)
	}
}

func TestAttachClassification_RequiresEntry(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "cache.json"))
	err := s.AttachClassification("10.1234/none", paper.Classification{Label: "Model Drift"})
	if !errors.Is(err, ErrNoEntry) {
		t.Errorf("error = %v, want ErrNoEntry", err)
	}
}

func TestSpendCreditPersistsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s := New(path)
	s.Load()
	s.SpendCredit()
	s.SpendCredit()

	if d := readData(t, path); d.CreditsUsed != 2 {
		t.Errorf("persisted creditsUsed = %d, want 2", d.CreditsUsed)
	}
}

func TestStats(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "cache.json"), WithCreditLimit(3))
	s.PutMetadata("10.1234/a", paper.Metadata{Title: "A"})
	s.PutMetadata("10.1234/b", paper.Metadata{Title: "B"})
	s.AttachClassification("10.1234/b", paper.Classification{Label: "Model Crisis"})
	s.SpendCredit()

	want := Stats{TotalEntries: 2, Classified: 1, CreditsUsed: 1, CreditLimit: 3, CreditsRemaining: 2}
	if got := s.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestEntriesSorted(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "cache.json"))
	s.PutMetadata("10.9999/z", paper.Metadata{})
	s.PutMetadata("10.1111/a", paper.Metadata{})
	s.PutMetadata("10.5555/m", paper.Metadata{})

	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, want := range []string{"10.1111/a", "10.5555/m", "10.9999/z"} {
		if entries[i].DOI != want {
			t.Errorf("entries[%d].DOI = %q, want %q", i, entries[i].DOI, want)
		}
	}
}
