package grading

import (
	"math"
	"regexp"
	"strings"
)

// tokenPattern keeps runs of at least two word characters, mirroring the
// tokenizer the remark percentages were calibrated against. Single-letter
// words do not enter the vocabulary.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Similarity scores how close a candidate answer is to the reference text,
// as a percentage in [0,100].
//
// The two texts are treated as a complete two-document corpus: term
// frequencies are weighted by smoothed inverse document frequency derived
// from this pair alone, the vectors are l2-normalized, and the result is
// their cosine scaled to a percentage. Scores are therefore only meaningful
// relative to the same pair, which is all the grade banding needs.
//
// Degenerate inputs (empty text, no tokens, disjoint vocabularies) yield
// 0.0; Similarity never fails.
func Similarity(candidate, reference string) float64 {
	candTokens := tokenize(candidate)
	refTokens := tokenize(reference)
	if len(candTokens) == 0 || len(refTokens) == 0 {
		return 0.0
	}

	candTF := termFrequencies(candTokens)
	refTF := termFrequencies(refTokens)

	// Smoothed IDF over the two-document corpus:
	// idf(t) = ln((1+n)/(1+df(t))) + 1 with n = 2.
	idf := func(term string) float64 {
		df := 0.0
		if candTF[term] > 0 {
			df++
		}
		if refTF[term] > 0 {
			df++
		}
		return math.Log(3.0/(1.0+df)) + 1.0
	}

	vocabulary := make(map[string]struct{}, len(candTF)+len(refTF))
	for term := range candTF {
		vocabulary[term] = struct{}{}
	}
	for term := range refTF {
		vocabulary[term] = struct{}{}
	}

	var dot, candNorm, refNorm float64
	for term := range vocabulary {
		w := idf(term)
		a := float64(candTF[term]) * w
		b := float64(refTF[term]) * w
		dot += a * b
		candNorm += a * a
		refNorm += b * b
	}
	if candNorm == 0 || refNorm == 0 {
		return 0.0
	}

	cosine := dot / (math.Sqrt(candNorm) * math.Sqrt(refNorm))
	if cosine < 0 {
		cosine = 0
	}
	if cosine > 1 {
		cosine = 1
	}
	return cosine * 100.0
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func termFrequencies(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, token := range tokens {
		tf[token]++
	}
	return tf
}
