package classify

import (
	"math"
	"math/rand"
	"testing"
)

// separableData builds two well-separated clusters of feature vectors.
func separableData(perClass, dims int) ([][]float64, []int) {
	var x [][]float64
	var y []int
	for i := 0; i < perClass; i++ {
		low := make([]float64, dims)
		high := make([]float64, dims)
		for d := 0; d < dims; d++ {
			low[d] = 0.1 + 0.01*float64(i%5)
			high[d] = 0.9 - 0.01*float64(i%5)
		}
		x = append(x, low, high)
		y = append(y, 0, 1)
	}
	return x, y
}

func TestScaleHyperparams_Bounds(t *testing.T) {
	for _, total := range []int{0, 1, 4, 6, 10, 26, 29, 50, 100, 10000} {
		hp := ScaleHyperparams(total)
		if hp.TreeCount < 10 || hp.TreeCount > 100 {
			t.Errorf("total=%d: tree count %d out of [10,100]", total, hp.TreeCount)
		}
		if hp.MaxDepth < 3 || hp.MaxDepth > 10 {
			t.Errorf("total=%d: max depth %d out of [3,10]", total, hp.MaxDepth)
		}
		if hp.MinSplit < 2 || hp.MinSplit > 5 {
			t.Errorf("total=%d: min split %d out of [2,5]", total, hp.MinSplit)
		}
		if hp.MinLeaf != 1 {
			t.Errorf("total=%d: min leaf %d, want 1", total, hp.MinLeaf)
		}
	}
}

func TestScaleHyperparams_Scaling(t *testing.T) {
	hp := ScaleHyperparams(20)
	if hp.TreeCount != 40 {
		t.Errorf("tree count = %d, want 40", hp.TreeCount)
	}
	if hp.MaxDepth != 4 {
		t.Errorf("max depth = %d, want 4", hp.MaxDepth)
	}
	if hp.MinSplit != 2 {
		t.Errorf("min split = %d, want 2", hp.MinSplit)
	}
}

func TestTrainForest_LearnsSeparableData(t *testing.T) {
	x, y := separableData(10, 6)
	hp := ScaleHyperparams(len(x))
	weights := []float64{1, 1}

	forest := TrainForest(x, y, 2, hp, weights, rand.New(rand.NewSource(Seed)))

	for i, vec := range x {
		if got := forest.Predict(vec); got != y[i] {
			t.Errorf("sample %d: predicted class %d, want %d", i, got, y[i])
		}
	}
}

func TestForest_ProbaSumsToOne(t *testing.T) {
	x, y := separableData(8, 6)
	hp := ScaleHyperparams(len(x))

	forest := TrainForest(x, y, 2, hp, []float64{1, 1}, rand.New(rand.NewSource(Seed)))

	probe := make([]float64, 6)
	for d := range probe {
		probe[d] = 0.5
	}

	probs := forest.Proba(probe)
	if len(probs) != 2 {
		t.Fatalf("expected 2 probabilities, got %d", len(probs))
	}

	var total float64
	for _, p := range probs {
		if p < 0 || p > 1 {
			t.Errorf("probability %v out of [0,1]", p)
		}
		total += p
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("probabilities sum to %v, want 1", total)
	}
}

func TestTrainForest_Deterministic(t *testing.T) {
	x, y := separableData(10, 6)
	hp := ScaleHyperparams(len(x))
	weights := []float64{1, 1}

	a := TrainForest(x, y, 2, hp, weights, rand.New(rand.NewSource(Seed)))
	b := TrainForest(x, y, 2, hp, weights, rand.New(rand.NewSource(Seed)))

	probe := make([]float64, 6)
	for d := range probe {
		probe[d] = 0.3
	}

	pa := a.Proba(probe)
	pb := b.Proba(probe)
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("probabilities differ for identical seed: %v vs %v", pa, pb)
		}
	}
}

func TestTrainForest_IdenticalFeatures(t *testing.T) {
	// All-zero features cannot be split; every tree degenerates to a single
	// mixed leaf and prediction stays well-formed
	x := make([][]float64, 6)
	y := []int{0, 0, 0, 1, 1, 1}
	for i := range x {
		x[i] = make([]float64, 6)
	}

	hp := ScaleHyperparams(len(x))
	forest := TrainForest(x, y, 2, hp, []float64{1, 1}, rand.New(rand.NewSource(Seed)))

	probs := forest.Proba(x[0])
	total := probs[0] + probs[1]
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("probabilities sum to %v, want 1", total)
	}
}
