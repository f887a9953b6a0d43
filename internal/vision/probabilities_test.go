package vision

import (
	"math"
	"testing"
)

func TestRankOrdersByProbability(t *testing.T) {
	p := NewPrediction([]string{"A", "B", "C"}, []float32{0.1, 0.7, 0.2})
	if p.Label != "B" || p.Index != 1 {
		t.Fatalf("argmax = %s/%d, want B/1", p.Label, p.Index)
	}

	rows := Rank(p)
	wantOrder := []string{"B", "C", "A"}
	wantPct := []float64{70, 20, 10}
	for i, row := range rows {
		if row.Label != wantOrder[i] {
			t.Errorf("rows[%d].Label = %s, want %s", i, row.Label, wantOrder[i])
		}
		if math.Abs(row.Percent-wantPct[i]) > 1e-4 {
			t.Errorf("rows[%d].Percent = %f, want %f", i, row.Percent, wantPct[i])
		}
		if row.Predicted != (row.Label == "B") {
			t.Errorf("rows[%d].Predicted = %v", i, row.Predicted)
		}
	}
}

func TestRankTiesKeepVocabularyOrder(t *testing.T) {
	rows := Rank(NewPrediction([]string{"x", "y", "z"}, []float32{0.25, 0.5, 0.25}))
	if rows[0].Label != "y" || rows[1].Label != "x" || rows[2].Label != "z" {
		t.Errorf("order = %s %s %s", rows[0].Label, rows[1].Label, rows[2].Label)
	}
}

func TestNewPredictionTieTakesFirst(t *testing.T) {
	p := NewPrediction([]string{"a", "b"}, []float32{0.5, 0.5})
	if p.Label != "a" {
		t.Errorf("Label = %s, want a", p.Label)
	}
}

func TestRankNil(t *testing.T) {
	if rows := Rank(nil); rows != nil {
		t.Errorf("Rank(nil) = %v", rows)
	}
}

func TestSoftmax(t *testing.T) {
	probs := Softmax([]float32{1, 2, 3, 1000})
	var sum float32
	for _, p := range probs {
		if p < 0 || p > 1 {
			t.Fatalf("probability out of range: %f", p)
		}
		sum += p
	}
	if math.Abs(float64(sum-1)) > 1e-5 {
		t.Errorf("sum = %f, want 1", sum)
	}
	if probs[3] < 0.99 {
		t.Errorf("largest logit should dominate, got %f", probs[3])
	}
}
