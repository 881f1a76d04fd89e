package explanations

import (
	"regexp"
	"strings"
	"unicode"

	"scentmatch-backend/internal/experience"
)

// WordPolicy bounds the word count of a summary for one experience level.
type WordPolicy struct {
	Min int
	Max int
}

var (
	pricePattern    = regexp.MustCompile(`\$\d+(\.\d{1,2})?`)
	sentenceBreak   = regexp.MustCompile(`[.!?]+\s+`)
	bulletLead      = regexp.MustCompile(`(?m)^\s*(?:[-*•·▪►]|\d+[.)])\s+`)
	simplePhrases   = []string{"perfect for", "great match", "you'll love", "matches your", "ideal for"}
	apostropheFixer = strings.NewReplacer("’", "'", "‘", "'")
)

// StripDecorations removes emoji, bullet glyphs and list markers.
func StripDecorations(text string) string {
	text = bulletLead.ReplaceAllString(text, "")
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isDecoration(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isDecoration(r rune) bool {
	switch {
	case r == '•', r == '·', r == '▪', r == '►', r == '✓', r == '✔':
		return true
	case r == 0x200D, r == 0xFE0F, r == 0xFE0E:
		return true
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case unicode.Is(unicode.So, r):
		return true
	}
	return false
}

// CountWords counts tokens that contain a letter or digit, after stripping decorations.
func CountWords(text string) int {
	n := 0
	for _, field := range strings.Fields(StripDecorations(text)) {
		if hasWordRune(field) {
			n++
		}
	}
	return n
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// TruncateWords keeps the first limit words and closes the sentence.
func TruncateWords(text string, limit int) string {
	fields := strings.Fields(StripDecorations(text))
	if limit <= 0 {
		return ""
	}
	kept := make([]string, 0, len(fields))
	count := 0
	for _, f := range fields {
		if hasWordRune(f) {
			if count == limit {
				break
			}
			count++
		}
		kept = append(kept, f)
	}
	out := strings.Join(kept, " ")
	if len(kept) < len(fields) {
		out = strings.TrimRight(out, ",;:-") + "."
	}
	return out
}

// PolicyFor returns the summary word bounds for a level.
func PolicyFor(level experience.Level) WordPolicy {
	switch level {
	case experience.Advanced:
		return WordPolicy{Min: 40, Max: 100}
	case experience.Intermediate:
		return WordPolicy{Min: 25, Max: 60}
	default:
		return WordPolicy{Min: 30, Max: 40}
	}
}

func containsSimplePhrase(text string) bool {
	lower := strings.ToLower(apostropheFixer.Replace(text))
	for _, p := range simplePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// hasSampleCTA reports whether the closing sentence offers a priced sample.
func hasSampleCTA(text string) bool {
	last := lastSentence(text)
	return strings.Contains(strings.ToLower(last), "sample") && pricePattern.MatchString(last)
}

func lastSentence(text string) string {
	text = strings.TrimSpace(text)
	breaks := sentenceBreak.FindAllStringIndex(text, -1)
	if len(breaks) == 0 {
		return text
	}
	return text[breaks[len(breaks)-1][1]:]
}
