package grading

import (
	"math"
	"testing"
)

func TestSimilarity_EmptyInputs(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		reference string
	}{
		{name: "both empty", candidate: "", reference: ""},
		{name: "empty candidate", candidate: "", reference: "photosynthesis converts light"},
		{name: "empty reference", candidate: "photosynthesis converts light", reference: ""},
		{name: "whitespace only", candidate: "   \t\n", reference: "some answer"},
		{name: "no usable tokens", candidate: "a b c", reference: "x y z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.candidate, tt.reference); got != 0.0 {
				t.Errorf("Similarity(%q, %q) = %v, want 0.0", tt.candidate, tt.reference, got)
			}
		})
	}
}

func TestSimilarity_IdenticalText(t *testing.T) {
	text := "Photosynthesis converts light energy into chemical energy"
	got := Similarity(text, text)
	if math.Abs(got-100.0) > 1e-9 {
		t.Errorf("Similarity(x, x) = %v, want 100.0", got)
	}
}

func TestSimilarity_Symmetry(t *testing.T) {
	pairs := [][2]string{
		{"the water cycle describes evaporation and condensation", "evaporation turns water into vapour"},
		{"Newton's first law of motion", "an object in motion stays in motion"},
		{"completely unrelated words here", "different vocabulary entirely used"},
	}
	for _, pair := range pairs {
		ab := Similarity(pair[0], pair[1])
		ba := Similarity(pair[1], pair[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Similarity not symmetric: %v vs %v for %q / %q", ab, ba, pair[0], pair[1])
		}
	}
}

func TestSimilarity_Range(t *testing.T) {
	got := Similarity(
		"plants use sunlight to make food through photosynthesis",
		"photosynthesis is how plants make food using sunlight",
	)
	if got <= 0 || got > 100 {
		t.Fatalf("Similarity out of range: %v", got)
	}

	disjoint := Similarity("alpha beta gamma", "delta epsilon zeta")
	if disjoint != 0.0 {
		t.Errorf("disjoint vocabularies should score 0.0, got %v", disjoint)
	}
}

func TestSimilarity_CaseInsensitive(t *testing.T) {
	got := Similarity("PHOTOSYNTHESIS CONVERTS LIGHT ENERGY", "photosynthesis converts light energy")
	if math.Abs(got-100.0) > 1e-9 {
		t.Errorf("case should not matter, got %v", got)
	}
}

func TestSimilarity_UnrelatedAnswerScoresLow(t *testing.T) {
	got := Similarity("I don't know", "Photosynthesis converts light energy into chemical energy")
	if got != 0.0 {
		t.Errorf("unrelated short answer scored %v, want 0.0", got)
	}
}
