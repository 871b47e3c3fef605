package bibtex

import "testing"

func TestMonthNumber(t *testing.T) {
	tests := []struct {
		mon  string
		want int
	}{
		{"1", 1},
		{"03", 3},
		{"12", 12},
		{"0", 0},
		{"13", 0},
		{"jan", 1},
		{"Mar", 3},
		{"SEPTEMBER", 9},
		{"dec", 12},
		{"", 0},
		{"xx", 0},
		{"notamonth", 0},
	}

	for _, tt := range tests {
		if got := MonthNumber(tt.mon); got != tt.want {
			t.Errorf("MonthNumber(%q) = %d, want %d", tt.mon, got, tt.want)
		}
	}
}

func TestNormalizeDate_BiblatexDate(t *testing.T) {
	e := Entry{Key: "K", Fields: []Field{{Name: "date", Value: "2020-03-15"}}}

	if err := NormalizeDate(&e); err != nil {
		t.Fatalf("NormalizeDate() error: %v", err)
	}
	if got := e.Year(); got != "2020" {
		t.Errorf("year = %q, want 2020", got)
	}
	if got := e.Get("month"); got != "03" {
		t.Errorf("month = %q, want 03", got)
	}
}

func TestNormalizeDate_YearOnlyDate(t *testing.T) {
	e := Entry{Key: "K", Fields: []Field{{Name: "date", Value: "2019"}}}

	if err := NormalizeDate(&e); err != nil {
		t.Fatalf("NormalizeDate() error: %v", err)
	}
	if got := e.Year(); got != "2019" {
		t.Errorf("year = %q, want 2019", got)
	}
	if e.Has("month") {
		t.Error("month should not be set from a year-only date")
	}
}

func TestNormalizeDate_ExistingYearUntouched(t *testing.T) {
	e := Entry{Key: "K", Fields: []Field{
		{Name: "year", Value: "2018"},
		{Name: "date", Value: "2020-01-01"},
	}}

	if err := NormalizeDate(&e); err != nil {
		t.Fatalf("NormalizeDate() error: %v", err)
	}
	if got := e.Year(); got != "2018" {
		t.Errorf("year = %q, want 2018 (existing year wins)", got)
	}
}

func TestNormalizeDate_NoDateAtAll(t *testing.T) {
	e := Entry{Key: "Broken", Fields: []Field{{Name: "title", Value: "T"}}}

	err := NormalizeDate(&e)
	if err == nil {
		t.Fatal("NormalizeDate() should fail with neither year nor date")
	}
}

func TestSortNewestFirst(t *testing.T) {
	entries := []Entry{
		{Key: "a", Fields: []Field{{Name: "year", Value: "2019"}}},
		{Key: "b", Fields: []Field{{Name: "year", Value: "2020"}, {Name: "month", Value: "jan"}}},
		{Key: "c", Fields: []Field{{Name: "year", Value: "2020"}, {Name: "month", Value: "nov"}}},
		{Key: "d", Fields: []Field{{Name: "year", Value: "2020"}}},
	}

	SortNewestFirst(entries)

	want := []string{"c", "b", "d", "a"}
	for i, key := range want {
		if entries[i].Key != key {
			t.Errorf("position %d = %s, want %s", i, entries[i].Key, key)
		}
	}
}

func TestSortNewestFirst_StableWithinDate(t *testing.T) {
	entries := []Entry{
		{Key: "first", Fields: []Field{{Name: "year", Value: "2020"}}},
		{Key: "second", Fields: []Field{{Name: "year", Value: "2020"}}},
	}

	SortNewestFirst(entries)

	if entries[0].Key != "first" || entries[1].Key != "second" {
		t.Errorf("same-date entries reordered: %s, %s", entries[0].Key, entries[1].Key)
	}
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.1234/ABC", "10.1234/abc"},
		{"https://doi.org/10.1234/abc", "10.1234/abc"},
		{"doi:10.1234/abc", "10.1234/abc"},
		{"  10.1234/abc  ", "10.1234/abc"},
	}

	for _, tt := range tests {
		if got := NormalizeDOI(tt.in); got != tt.want {
			t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
