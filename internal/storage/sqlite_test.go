package storage

import (
	"path/filepath"
	"testing"

	"github.com/matsen/bibble/internal/bibtex"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "entries.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testEntries() []bibtex.Entry {
	return []bibtex.Entry{
		{Key: "Smith2020", Type: "article", Fields: []bibtex.Field{
			{Name: "title", Value: "First Paper"},
			{Name: "author", Value: "Smith, John"},
			{Name: "journal", Value: "Nature"},
			{Name: "year", Value: "2020"},
			{Name: "month", Value: "mar"},
			{Name: "doi", Value: "10.1234/first"},
		}},
		{Key: "Doe2020", Type: "inproceedings", Fields: []bibtex.Field{
			{Name: "title", Value: "Second Paper"},
			{Name: "author", Value: "Doe, Jane"},
			{Name: "booktitle", Value: "Proc. ICML"},
			{Name: "year", Value: "2020"},
		}},
		{Key: "Roe2019", Type: "article", Fields: []bibtex.Field{
			{Name: "title", Value: "Third Paper"},
			{Name: "author", Value: "Roe, Richard"},
			{Name: "journal", Value: "Cell"},
			{Name: "year", Value: "2019"},
		}},
	}
}

func TestRebuildAndListAll(t *testing.T) {
	db := testDB(t)

	count, err := db.Rebuild(testEntries())
	if err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	if count != 3 {
		t.Errorf("Rebuild() = %d, want 3", count)
	}

	entries, err := db.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("ListAll() returned %d entries, want 3", len(entries))
	}

	// Source order preserved
	wantKeys := []string{"Smith2020", "Doe2020", "Roe2019"}
	for i, key := range wantKeys {
		if entries[i].Key != key {
			t.Errorf("entry %d = %s, want %s", i, entries[i].Key, key)
		}
	}

	// Field order survives the JSON round trip
	if got := entries[0].Fields[0].Name; got != "title" {
		t.Errorf("first field = %q, want title", got)
	}
	if got := entries[0].Get("journal"); got != "Nature" {
		t.Errorf("journal = %q, want Nature", got)
	}
}

func TestRebuildReplacesContents(t *testing.T) {
	db := testDB(t)

	if _, err := db.Rebuild(testEntries()); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	if _, err := db.Rebuild(testEntries()[:1]); err != nil {
		t.Fatalf("second Rebuild() error: %v", err)
	}

	n, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if n != 1 {
		t.Errorf("Count() after rebuild = %d, want 1", n)
	}
}

func TestGetByKey(t *testing.T) {
	db := testDB(t)
	if _, err := db.Rebuild(testEntries()); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}

	e, err := db.GetByKey("Doe2020")
	if err != nil {
		t.Fatalf("GetByKey() error: %v", err)
	}
	if e == nil {
		t.Fatal("GetByKey() = nil, want entry")
	}
	if e.Type != "inproceedings" || e.Get("booktitle") != "Proc. ICML" {
		t.Errorf("GetByKey() = %+v, want Doe2020 entry", e)
	}

	missing, err := db.GetByKey("Nobody1999")
	if err != nil {
		t.Fatalf("GetByKey(missing) error: %v", err)
	}
	if missing != nil {
		t.Errorf("GetByKey(missing) = %+v, want nil", missing)
	}
}

func TestListByYear(t *testing.T) {
	db := testDB(t)
	if _, err := db.Rebuild(testEntries()); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}

	entries, err := db.ListByYear(2020)
	if err != nil {
		t.Fatalf("ListByYear() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListByYear(2020) returned %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Year() != "2020" {
			t.Errorf("entry %s has year %s, want 2020", e.Key, e.Year())
		}
	}
}

func TestGetByDOI(t *testing.T) {
	db := testDB(t)
	if _, err := db.Rebuild(testEntries()); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}

	// DOIs are normalized on insert, so prefixed lookups match too.
	e, err := db.GetByDOI("https://doi.org/10.1234/FIRST")
	if err != nil {
		t.Fatalf("GetByDOI() error: %v", err)
	}
	if e == nil || e.Key != "Smith2020" {
		t.Errorf("GetByDOI() = %+v, want Smith2020", e)
	}
}
