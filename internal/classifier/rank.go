package classifier

import (
	"fmt"
	"math"
	"sort"

	"imgclassd/pkg/types"
)

// topK matches the five ranked predictions kept per request.
const topK = 5

// rank maps raw engine scores to the k best (label, confidence) pairs. Scores
// that are not already a probability distribution go through a softmax.
func rank(scores []float32, labels []string, k int) ([]types.Prediction, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("engine returned no scores")
	}
	if len(scores) != len(labels) {
		return nil, fmt.Errorf("engine returned %d scores for %d labels", len(scores), len(labels))
	}
	probs, err := probabilities(scores)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return probs[idx[a]] > probs[idx[b]] })
	if k <= 0 || k > len(idx) {
		k = len(idx)
	}
	out := make([]types.Prediction, k)
	for i := 0; i < k; i++ {
		out[i] = types.Prediction{Label: labels[idx[i]], Confidence: probs[idx[i]]}
	}
	return out, nil
}

func probabilities(scores []float32) ([]float32, error) {
	var sum float64
	distribution := true
	for i, s := range scores {
		f := float64(s)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("score %d is not finite", i)
		}
		if f < 0 || f > 1 {
			distribution = false
		}
		sum += f
	}
	if distribution && sum <= 1+1e-3 {
		return scores, nil
	}
	return softmax(scores), nil
}

func softmax(scores []float32) []float32 {
	maxv := scores[0]
	for _, s := range scores[1:] {
		if s > maxv {
			maxv = s
		}
	}
	out := make([]float32, len(scores))
	var sum float64
	for i, s := range scores {
		e := math.Exp(float64(s - maxv))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
