// Package classify implements the adaptive dataset-to-model pipeline:
// train/test split planning, random forest training, model persistence and
// calibrated inference.
package classify

import (
	"math"
	"math/rand"
	"sort"
)

// Seed fixes the randomness of splits and forest training so that training
// twice on the same dataset produces identical results.
const Seed int64 = 42

// Plan describes how to partition the dataset for one training run.
type Plan struct {
	// TestFraction is the share of samples held out for evaluation, in (0,1).
	TestFraction float64
	// Stratify requests proportional class representation in both partitions.
	Stratify bool
}

// PlanSplit validates that the dataset is trainable and computes the
// partition plan from its size and per-class counts.
//
// Small, unevenly distributed per-gesture datasets are the expected operating
// regime: the fraction schedule keeps at least one held-out sample per class
// without starving training data when datasets are tiny.
func PlanSplit(total int, counts map[string]int) (Plan, error) {
	k := len(counts)
	if k < 2 {
		return Plan{}, &InsufficientClassesError{Classes: k}
	}

	for _, label := range sortedLabels(counts) {
		if counts[label] < 2 {
			return Plan{}, &InsufficientClassSamplesError{Label: label, Count: counts[label]}
		}
	}

	// Reserve at least one test sample per class
	minTestSamples := k
	if total < minTestSamples*2 {
		return Plan{}, &InsufficientTotalSamplesError{Total: total, Required: minTestSamples * 2}
	}

	var fraction float64
	switch {
	case total >= 50:
		fraction = 0.20
	case total >= 30:
		fraction = 0.25
	default:
		fraction = math.Max(0.30, float64(minTestSamples)/float64(total))
	}

	return Plan{TestFraction: fraction, Stratify: true}, nil
}

// Split is a concrete train/test partition of sample indices.
type Split struct {
	TrainIdx []int
	TestIdx  []int
	// Stratified reports whether the stratified partition was used; false
	// means the plan fell back to a plain random split at the same fraction.
	Stratified bool
}

// Partition realizes the plan over the given sample labels. It first
// attempts a stratified split; when the fraction would land some class
// entirely in one partition, it falls back to a plain seeded shuffle at the
// same fraction. The fallback is a non-fatal degradation, not an error.
func (p Plan) Partition(labels []string, seed int64) Split {
	rng := rand.New(rand.NewSource(seed))

	if p.Stratify {
		if split, ok := stratifiedPartition(labels, p.TestFraction, rng); ok {
			return split
		}
		// Re-seed so the fallback does not depend on how far the
		// stratified attempt advanced the generator.
		rng = rand.New(rand.NewSource(seed))
	}

	return plainPartition(len(labels), p.TestFraction, rng)
}

// stratifiedPartition allocates round(count*fraction) test samples per class.
// It reports ok=false when any class would contribute zero test or zero
// training samples at that allocation.
func stratifiedPartition(labels []string, fraction float64, rng *rand.Rand) (Split, bool) {
	byClass := make(map[string][]int)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}

	split := Split{Stratified: true}
	for _, label := range sortedLabels(byClass) {
		indices := byClass[label]
		nTest := int(math.Round(fraction * float64(len(indices))))
		if nTest == 0 || nTest >= len(indices) {
			return Split{}, false
		}

		shuffled := append([]int(nil), indices...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		split.TestIdx = append(split.TestIdx, shuffled[:nTest]...)
		split.TrainIdx = append(split.TrainIdx, shuffled[nTest:]...)
	}

	return split, true
}

func plainPartition(total int, fraction float64, rng *rand.Rand) Split {
	indices := rng.Perm(total)

	nTest := int(math.Round(fraction * float64(total)))
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= total {
		nTest = total - 1
	}

	return Split{
		TestIdx:    indices[:nTest],
		TrainIdx:   indices[nTest:],
		Stratified: false,
	}
}

// sortedLabels returns map keys in lexical order for deterministic iteration.
func sortedLabels[V any](m map[string]V) []string {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
