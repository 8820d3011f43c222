package digest

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var (
	urlPattern      = regexp.MustCompile(`https?://\S+`)
	linkPattern     = regexp.MustCompile(`https?://[^\s)]+`)
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9\s]`)
	trailingPunct   = regexp.MustCompile(`[),.]+$`)
)

// stopwords is a minimal english stoplist tuned for thread chatter.
var stopwords = map[string]struct{}{}

func init() {
	for _, word := range []string{
		"the", "and", "for", "that", "with", "this", "from", "you", "your", "are", "was", "were", "have", "has",
		"but", "not", "just", "any", "out", "get", "can", "cant", "won", "wont", "its", "they", "them", "their",
		"what", "when", "where", "which", "why", "who", "how", "did", "does", "doing", "done", "had", "been",
		"into", "over", "under", "than", "then", "too", "very", "much", "more", "less", "also", "some", "here",
		"there", "like", "one", "two", "three", "able", "about", "such",
	} {
		stopwords[word] = struct{}{}
	}
}

// tokenize lowercases the text, strips URLs and punctuation, and keeps
// tokens longer than two characters that are not stopwords.
func tokenize(text string) []string {
	lowered := strings.ToLower(text)
	lowered = urlPattern.ReplaceAllString(lowered, " ")
	lowered = nonAlnumPattern.ReplaceAllString(lowered, " ")

	tokens := make([]string, 0, 32)
	for _, field := range strings.Fields(lowered) {
		if len(field) <= 2 {
			continue
		}
		if _, stop := stopwords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// bigrams counts adjacent token pairs.
func bigrams(tokens []string) map[string]int {
	pairs := make(map[string]int)
	for i := 0; i+1 < len(tokens); i++ {
		pairs[tokens[i]+" "+tokens[i+1]]++
	}
	return pairs
}

// topN returns the n highest counts, descending, with ties broken
// alphabetically so the output is deterministic.
func topN(counts map[string]int, n int) []KeywordCount {
	ranked := make([]KeywordCount, 0, len(counts))
	for term, count := range counts {
		ranked = append(ranked, KeywordCount{Term: term, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Term < ranked[j].Term
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// extractLinks pulls every URL out of the text, trims trailing
// punctuation, and normalizes the domain by stripping a www. prefix.
// Unparseable candidates are dropped.
func extractLinks(text string) []Link {
	matches := linkPattern.FindAllString(text, -1)
	links := make([]Link, 0, len(matches))
	for _, match := range matches {
		cleaned := trailingPunct.ReplaceAllString(match, "")
		parsed, err := url.Parse(cleaned)
		if err != nil || parsed.Hostname() == "" {
			continue
		}
		links = append(links, Link{
			URL:    parsed.String(),
			Domain: strings.TrimPrefix(parsed.Hostname(), "www."),
		})
	}
	return links
}

var positiveWords = wordSet("good", "great", "love", "helpful", "nice", "amazing", "cool", "thanks", "thank", "awesome", "best", "useful")
var negativeWords = wordSet("bad", "hate", "terrible", "annoying", "broken", "issue", "bug", "worst", "useless", "problem", "confusing")

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

type polarity int

const (
	neutral polarity = iota
	positive
	negative
)

// naiveSentiment scores text by counting lexicon hits. Ties are neutral.
func naiveSentiment(text string) polarity {
	var pos, neg int
	for _, token := range tokenize(text) {
		if _, ok := positiveWords[token]; ok {
			pos++
		}
		if _, ok := negativeWords[token]; ok {
			neg++
		}
	}
	switch {
	case pos > neg:
		return positive
	case neg > pos:
		return negative
	default:
		return neutral
	}
}
