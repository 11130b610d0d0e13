package llm

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

const maxResponseBytes = 4 << 20

var (
	errEmptyDocument = errors.New("document has no text to work with")
	errEmptyQuestion = errors.New("question cannot be empty")

	sentenceEnd = regexp.MustCompile(`[.!?]+(\s+|$)`)

	stopwords = map[string]bool{
		"what": true, "why": true, "how": true, "the": true, "does": true, "file": true,
		"this": true, "that": true, "for": true, "are": true, "and": true, "with": true,
		"about": true, "explain": true, "which": true, "who": true, "when": true,
	}
)

// clipText trims text to at most limit runes.
func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func buildSummaryPrompt(title, excerpt string) string {
	if title == "" {
		title = "the document"
	}
	var b strings.Builder
	b.WriteString("Summarize the study material below for a student revising it.\n")
	b.WriteString("Write 5 short bullets (at most 25 words each) on the main ideas, then one line of key terms.\n\n")
	b.WriteString("Document: " + title + "\n\n")
	b.WriteString("Content:\n" + excerpt)
	return b.String()
}

func buildAnswerPrompt(title, excerpt, question string) string {
	var b strings.Builder
	b.WriteString("Answer the student's question using only the excerpt below. ")
	b.WriteString("If the excerpt does not contain the answer, say it is not in the file.\n\n")
	if title != "" {
		b.WriteString("File: " + title + "\n\n")
	}
	b.WriteString("Excerpt:\n" + excerpt)
	b.WriteString("\n\nQuestion: " + question + "\nAnswer:")
	return b.String()
}

// extractQuestionContext keeps the sentences that share the most keywords
// with question, in document order, up to limit runes. Without any match the
// clipped content is returned.
func extractQuestionContext(content, question string, limit int) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	keywords := questionKeywords(question)
	if len(keywords) == 0 {
		return clipText(content, limit)
	}

	type scored struct {
		index int
		text  string
		hits  int
	}
	var candidates []scored
	for i, sentence := range splitSentences(content) {
		lower := strings.ToLower(sentence)
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > 0 {
			candidates = append(candidates, scored{index: i, text: sentence, hits: hits})
		}
	}
	if len(candidates) == 0 {
		return clipText(content, limit)
	}

	sort.SliceStable(candidates, func(a, b int) bool { return candidates[a].hits > candidates[b].hits })
	kept := candidates[:0]
	used := 0
	for _, c := range candidates {
		if used > 0 && used+len(c.text) > limit {
			continue
		}
		kept = append(kept, c)
		used += len(c.text) + 1
	}
	sort.Slice(kept, func(a, b int) bool { return kept[a].index < kept[b].index })

	parts := make([]string, len(kept))
	for i, c := range kept {
		parts[i] = c.text
	}
	return clipText(strings.Join(parts, " "), limit)
}

func questionKeywords(question string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	seen := map[string]bool{}
	var keywords []string
	for _, tok := range tokens {
		if len(tok) < 3 || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}
	return keywords
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
