package fuzzy

import "testing"

func TestSubstringMatcher(t *testing.T) {
	m := SubstringMatcher{}

	tests := []struct {
		query     string
		candidate string
		want      int
	}{
		{"report.pdf", "report.pdf", 100},
		{"Report.PDF", "report.pdf", 100},
		{"report", "annual_report.pdf", 85},
		{"annual report budget", "report", 80},
		{"milk", "eggs.txt", 0},
		{"", "anything", 0},
		{"anything", "", 0},
	}

	for _, tt := range tests {
		if got := m.Score(tt.query, tt.candidate); got != tt.want {
			t.Errorf("Score(%q, %q) = %d, want %d", tt.query, tt.candidate, got, tt.want)
		}
	}
}

func TestTokenSetMatcherExactBeatsOrEqualsSubstring(t *testing.T) {
	m := TokenSetMatcher{}

	exact := m.Score("report.pdf", "report.pdf")
	partial := m.Score("report.pdf", "report_final.pdf")

	if exact != 100 {
		t.Errorf("exact match = %d, want 100", exact)
	}
	if partial > exact {
		t.Errorf("substring match (%d) must not outscore exact match (%d)", partial, exact)
	}
}

func TestTokenSetMatcherEmptyInput(t *testing.T) {
	m := TokenSetMatcher{}

	if got := m.Score("", "report.pdf"); got != 0 {
		t.Errorf("empty query should score 0, got %d", got)
	}
	if got := m.Score("report.pdf", ""); got != 0 {
		t.Errorf("empty candidate should score 0, got %d", got)
	}
}

func TestMatcherNames(t *testing.T) {
	if Default().Name() != "token_set" {
		t.Errorf("Default() should be the token-set variant")
	}
	if (SubstringMatcher{}).Name() != "substring" {
		t.Error("fallback variant should identify as substring")
	}
}
