package vision

import (
	"math"
	"sort"
)

type LabelProbability struct {
	Label       string  `json:"label"`
	Index       int     `json:"index"`
	Probability float32 `json:"probability"`
}

// Prediction is the argmax label plus the probability of every label, in vocabulary order.
type Prediction struct {
	Label         string             `json:"label"`
	Index         int                `json:"index"`
	Probabilities []LabelProbability `json:"probabilities"`
}

type RankedLabel struct {
	Label       string  `json:"label"`
	Probability float32 `json:"probability"`
	Percent     float64 `json:"percent"`
	Predicted   bool    `json:"predicted"`
}

// NewPrediction pairs labels with probs and picks the argmax. Ties keep the lower index.
func NewPrediction(labels []string, probs []float32) *Prediction {
	out := &Prediction{Probabilities: make([]LabelProbability, len(labels))}
	best := -1
	var bestP float32
	for i, label := range labels {
		var p float32
		if i < len(probs) {
			p = probs[i]
		}
		out.Probabilities[i] = LabelProbability{Label: label, Index: i, Probability: p}
		if best < 0 || p > bestP {
			best, bestP = i, p
		}
	}
	if best >= 0 {
		out.Index = best
		out.Label = labels[best]
	}
	return out
}

// Rank orders every label by probability, highest first. Equal probabilities keep vocabulary order.
func Rank(p *Prediction) []RankedLabel {
	if p == nil {
		return nil
	}
	rows := make([]RankedLabel, len(p.Probabilities))
	for i, lp := range p.Probabilities {
		rows[i] = RankedLabel{
			Label:       lp.Label,
			Probability: lp.Probability,
			Percent:     float64(lp.Probability) * 100,
			Predicted:   lp.Label == p.Label,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Probability > rows[j].Probability
	})
	return rows
}

// Softmax converts logits to probabilities.
func Softmax(logits []float32) []float32 {
	maxLogit := float32(math.Inf(-1))
	for _, logit := range logits {
		if logit > maxLogit {
			maxLogit = logit
		}
	}

	var sumExp float32
	probs := make([]float32, len(logits))
	for i, logit := range logits {
		exp := float32(math.Exp(float64(logit - maxLogit)))
		probs[i] = exp
		sumExp += exp
	}
	for i := range probs {
		probs[i] /= sumExp
	}
	return probs
}
