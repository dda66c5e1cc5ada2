package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MuthoniGathiithi/filehound/internal/fuzzy"
	"github.com/MuthoniGathiithi/filehound/internal/scan"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestParseDateDescription(t *testing.T) {
	// A Friday.
	now := time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		desc    string
		wantDay string
		wantOK  bool
	}{
		{"today", "2024-03-15", true},
		{"yesterday", "2024-03-14", true},
		{"last tuesday", "2024-03-12", true},
		{"last week", "2024-03-08", true},
		{"last month", "2024-02-14", true},
		{"files from 2023-12-15", "2023-12-15", true},
		{"12/25/2023", "2023-12-25", true},
		{"12-25-2023", "2023-12-25", true},
		{"whenever", "", false},
	}

	for _, tt := range tests {
		got, ok := parseDateDescription(tt.desc, now)
		if ok != tt.wantOK {
			t.Errorf("parseDateDescription(%q) ok = %v, want %v", tt.desc, ok, tt.wantOK)
			continue
		}
		if ok && got.Format("2006-01-02") != tt.wantDay {
			t.Errorf("parseDateDescription(%q) = %s, want %s", tt.desc, got.Format("2006-01-02"), tt.wantDay)
		}
	}
}

func TestParseDateDescriptionLastTuesdayOnTuesday(t *testing.T) {
	// "last tuesday" asked on a Tuesday means a full week back, not today.
	now := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)

	got, ok := parseDateDescription("last tuesday", now)
	if !ok {
		t.Fatal("parseDateDescription returned !ok")
	}
	if got.Format("2006-01-02") != "2024-03-05" {
		t.Errorf("got %s, want 2024-03-05", got.Format("2006-01-02"))
	}
}

func TestExtractSearchTerms(t *testing.T) {
	terms := extractSearchTerms("Where is the budget file I edited with Excel")

	want := []string{"budget", "edited", "excel"}

	if len(terms) != len(want) {
		t.Fatalf("terms = %v, want %v", terms, want)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("terms[%d] = %q, want %q", i, terms[i], want[i])
		}
	}
}

func TestExtractSearchTermsDedupes(t *testing.T) {
	terms := extractSearchTerms("budget budget BUDGET")
	if len(terms) != 1 || terms[0] != "budget" {
		t.Errorf("terms = %v, want [budget]", terms)
	}
}

func TestExtractSnippet(t *testing.T) {
	content := strings.Repeat("x", 200) + " the budget figures are here " + strings.Repeat("y", 200)

	snippet := extractSnippet(content, []string{"budget"})
	if !strings.Contains(snippet, "budget") {
		t.Errorf("snippet %q does not contain the term", snippet)
	}
	if len(snippet) > 103 {
		t.Errorf("snippet too long: %d chars", len(snippet))
	}

	if got := extractSnippet("", []string{"budget"}); got != "no preview available" {
		t.Errorf("empty content snippet = %q", got)
	}

	// Term absent: fall back to a truncated prefix.
	long := strings.Repeat("z", 300)
	if got := extractSnippet(long, []string{"budget"}); len(got) != 103 || !strings.HasSuffix(got, "...") {
		t.Errorf("fallback snippet = %q", got)
	}
}

func TestFindFileWithContent(t *testing.T) {
	tmpDir := t.TempDir()
	todo := writeFixture(t, tmpDir, "todo.txt", "buy milk and eggs")
	notes := writeFixture(t, tmpDir, "notes.txt", "meeting agenda for monday")

	st := openTestStore(t)
	addFile(t, st, todo)
	addFile(t, st, notes)
	if err := st.UpsertContentCache(todo, "buy milk and eggs", []string{"milk", "eggs"}, nil); err != nil {
		t.Fatalf("UpsertContentCache() error = %v", err)
	}
	if err := st.UpsertContentCache(notes, "meeting agenda for monday", []string{"meeting", "agenda", "monday"}, nil); err != nil {
		t.Fatalf("UpsertContentCache() error = %v", err)
	}

	e := New(st, fuzzy.Default(), &mockScanner{})

	report := e.FindFileWithContent("milk")
	if !strings.Contains(report, "todo.txt") {
		t.Errorf("report missing todo.txt:\n%s", report)
	}
	if strings.Contains(report, "notes.txt") {
		t.Errorf("report should not contain notes.txt:\n%s", report)
	}
	if !strings.Contains(report, "milk") {
		t.Errorf("report missing snippet:\n%s", report)
	}

	if report := e.FindFileWithContent("zebra"); !strings.Contains(report, "No files found containing") {
		t.Errorf("no-match report = %q", report)
	}
	if report := e.FindFileWithContent("   "); !strings.Contains(report, "No files found containing") {
		t.Errorf("empty report = %q", report)
	}
}

func TestFindFilesByDate(t *testing.T) {
	tmpDir := t.TempDir()
	report1 := writeFixture(t, tmpDir, "quarterly.xlsx", "numbers")
	report2 := writeFixture(t, tmpDir, "minutes.txt", "meeting minutes")

	st := openTestStore(t)
	target := time.Date(2023, 12, 15, 10, 30, 0, 0, time.UTC)
	if err := st.AppendAccessEvent(report1, "modified", target, ""); err != nil {
		t.Fatalf("AppendAccessEvent() error = %v", err)
	}
	if err := st.AppendAccessEvent(report2, "opened", target.Add(2*time.Hour), ""); err != nil {
		t.Fatalf("AppendAccessEvent() error = %v", err)
	}
	// An event outside the target day must not show up.
	if err := st.AppendAccessEvent(report1, "opened", target.AddDate(0, 0, 3), ""); err != nil {
		t.Fatalf("AppendAccessEvent() error = %v", err)
	}

	e := New(st, fuzzy.Default(), &mockScanner{})

	out := e.FindFilesByDate("2023-12-15")
	if !strings.Contains(out, "Friday, December 15, 2023") {
		t.Errorf("report missing formatted date:\n%s", out)
	}
	if !strings.Contains(out, "quarterly.xlsx") || !strings.Contains(out, "minutes.txt") {
		t.Errorf("report missing files:\n%s", out)
	}
	if !strings.Contains(out, "10:30") {
		t.Errorf("report missing event time:\n%s", out)
	}

	if out := e.FindFilesByDate("2022-01-01"); !strings.Contains(out, "No files found for") {
		t.Errorf("empty-day report = %q", out)
	}
	if out := e.FindFilesByDate("whenever"); !strings.Contains(out, "Could not understand the date") {
		t.Errorf("unparseable report = %q", out)
	}
}

func TestFindFilesByDateSkipsDeletedFiles(t *testing.T) {
	st := openTestStore(t)
	target := time.Date(2023, 12, 15, 10, 30, 0, 0, time.UTC)
	if err := st.AppendAccessEvent("/gone/forever.txt", "opened", target, ""); err != nil {
		t.Fatalf("AppendAccessEvent() error = %v", err)
	}

	e := New(st, fuzzy.Default(), &mockScanner{})

	out := e.FindFilesByDate("2023-12-15")
	if !strings.Contains(out, "none still exist") {
		t.Errorf("report = %q", out)
	}
}

func TestFindLostFile(t *testing.T) {
	tmpDir := t.TempDir()
	budget := writeFixture(t, tmpDir, "budget_2024.txt", "quarterly budget numbers")
	other := writeFixture(t, tmpDir, "budget_old.txt", "stale")

	st := openTestStore(t)
	addFile(t, st, budget)
	addFile(t, st, other)
	if err := st.UpsertContentCache(budget, "quarterly budget numbers", []string{"quarterly", "budget", "numbers"}, nil); err != nil {
		t.Fatalf("UpsertContentCache() error = %v", err)
	}

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	if err := st.AppendAccessEvent(budget, "modified", now.AddDate(0, 0, -2), ""); err != nil {
		t.Fatalf("AppendAccessEvent() error = %v", err)
	}

	e := New(st, fuzzy.Default(), &mockScanner{})
	e.now = func() time.Time { return now }

	report := e.FindLostFile("the budget file I edited")
	if !strings.Contains(report, "budget_2024.txt") {
		t.Errorf("report missing best candidate:\n%s", report)
	}
	if !strings.Contains(report, "filename") || !strings.Contains(report, "content") {
		t.Errorf("report missing match layers:\n%s", report)
	}
	if !strings.Contains(report, "recent activity") {
		t.Errorf("report missing activity layer:\n%s", report)
	}

	// Layers stack, so the file matching name+content+activity must lead.
	first := strings.Index(report, "budget_2024.txt")
	second := strings.Index(report, "budget_old.txt")
	if second >= 0 && first > second {
		t.Errorf("budget_2024.txt should outrank budget_old.txt:\n%s", report)
	}
}

func TestFindLostFileNoMatch(t *testing.T) {
	st := openTestStore(t)
	e := New(st, fuzzy.Default(), &mockScanner{})

	if report := e.FindLostFile("zq8xw3vp1k9t5rn2"); !strings.Contains(report, "No files found") {
		t.Errorf("report = %q", report)
	}
	if report := e.FindLostFile("   "); !strings.Contains(report, "No files found") {
		t.Errorf("empty description report = %q", report)
	}
}

func TestFindLostFileScanFallback(t *testing.T) {
	tmpDir := t.TempDir()
	budget := writeFixture(t, tmpDir, "budget.txt", "numbers")

	scanner := &mockScanner{result: scan.Result{Paths: []string{budget}}}
	e := New(nil, fuzzy.Default(), scanner)

	report := e.FindLostFile("budget")
	if !strings.Contains(report, "budget.txt") {
		t.Errorf("report missing scanned file:\n%s", report)
	}
	if !strings.Contains(report, "name scan") {
		t.Errorf("report missing scan layer:\n%s", report)
	}
	if scanner.calls != 1 {
		t.Errorf("scanner calls = %d, want 1", scanner.calls)
	}
}
