package document

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"
)

var (
	paragraphSplit = regexp.MustCompile(`\n{2,}`)
	spaceRun       = regexp.MustCompile(`\s+`)
)

// Condense removes repeated paragraphs and page furniture from extracted PDF
// text: running headers, page numbers, numeric tables, citation and licence
// lines. Paragraph order is preserved.
func Condense(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	seen := map[string]bool{}
	kept := make([]string, 0, 32)
	for _, paragraph := range paragraphSplit.Split(text, -1) {
		trimmed := strings.TrimSpace(paragraph)
		if isFurniture(trimmed) {
			continue
		}
		hash := paragraphHash(spaceRun.ReplaceAllString(trimmed, " "))
		if seen[hash] {
			continue
		}
		seen[hash] = true
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n\n")
}

func isFurniture(paragraph string) bool {
	lower := strings.ToLower(paragraph)
	if lower == "" {
		return true
	}
	switch {
	case lower == "abstract", lower == "keywords", lower == "contents":
		return true
	case strings.HasPrefix(lower, "references"), strings.HasPrefix(lower, "bibliography"):
		return true
	case strings.HasPrefix(lower, "copyright"), strings.HasPrefix(lower, "©"):
		return true
	case strings.Contains(lower, "doi:"), strings.Contains(lower, "doi.org/"):
		return true
	case strings.Contains(lower, "arxiv:") && len(lower) < 80:
		return true
	case strings.Contains(lower, "all rights reserved"):
		return true
	}
	if len(lower) <= 12 && !strings.Contains(lower, " ") {
		return true
	}
	letters := 0
	for _, r := range lower {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters*5 < len(lower)
}

func paragraphHash(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
