package explanations

import (
	"strings"
	"testing"

	"scentmatch-backend/internal/experience"
)

func TestCountWordsIgnoresDecorations(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{in: "", want: 0},
		{in: "fresh and clean", want: 3},
		{in: "✨ Fresh • clean 🌊", want: 2},
		{in: "- citrus\n- musk\n1. amber", want: 3},
		{in: "Try a sample for $15.", want: 5},
		{in: "👩‍🔬 lab - made", want: 2},
	}
	for _, tt := range tests {
		if got := CountWords(tt.in); got != tt.want {
			t.Fatalf("CountWords(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTruncateWords(t *testing.T) {
	if got := TruncateWords("one two three four", 2); got != "one two." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := TruncateWords("one two", 5); got != "one two" {
		t.Fatalf("short text changed: %q", got)
	}
	if got := TruncateWords("one, two, three", 2); got != "one, two." {
		t.Fatalf("trailing punctuation not closed: %q", got)
	}
	if got := TruncateWords("anything", 0); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestPolicyFor(t *testing.T) {
	if p := PolicyFor(experience.Beginner); p.Min != 30 || p.Max != 40 {
		t.Fatalf("beginner policy %+v", p)
	}
	if p := PolicyFor(experience.Intermediate); p.Max != 60 {
		t.Fatalf("intermediate policy %+v", p)
	}
	if p := PolicyFor(experience.Advanced); p.Max != 100 {
		t.Fatalf("advanced policy %+v", p)
	}
	if p := PolicyFor(""); p.Max != 40 {
		t.Fatalf("unknown level should use beginner policy, got %+v", p)
	}
}

func TestConformBeginnerAddsCTAWithinLimit(t *testing.T) {
	long := strings.Repeat("lovely ", 80)
	got := conformBeginner(long, FragranceMeta{SamplePriceUSD: 12})
	if n := CountWords(got); n > 40 {
		t.Fatalf("conformed text has %d words", n)
	}
	if !strings.HasSuffix(got, "Try a sample for $12.") {
		t.Fatalf("missing call to action: %q", got)
	}

	short := "Soft vanilla. A sample costs $9."
	if got := conformBeginner(short, FragranceMeta{}); got != short {
		t.Fatalf("compliant text should be kept, got %q", got)
	}
}

func TestSampleCTAMustCloseTheText(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{in: "Bright citrus for daytime. Try a sample for $15.", want: true},
		{in: "Bright citrus for daytime. Try a sample for $15 first!", want: true},
		{in: "A sample costs $9.", want: true},
		{in: "Try a sample for $15. Bright citrus for daytime.", want: false},
		{in: "Bright citrus. Order a sample today.", want: false},
	}
	for _, tc := range cases {
		if got := hasSampleCTA(tc.in); got != tc.want {
			t.Fatalf("hasSampleCTA(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestConformBeginnerMovesLeadingCTAToTheEnd(t *testing.T) {
	got := conformBeginner("Try a sample for $10. Bright and clean for every day.", FragranceMeta{SamplePriceUSD: 10})
	if !strings.HasSuffix(got, "Try a sample for $10.") {
		t.Fatalf("call to action should close the text: %q", got)
	}
}
