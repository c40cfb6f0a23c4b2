package classify

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/ayusman/mudra/internal/dataset"
)

// TrainedModel is the single persisted classifier artifact: the fitted
// forest plus the class list and hyperparameters that produced it.
type TrainedModel struct {
	Forest    *Forest
	Classes   []string // ordered; forest class indices refer into this list
	Params    Hyperparams
	TrainedOn int // total samples the model was trained from
}

// TrainingResult reports the outcome of one successful training run.
type TrainingResult struct {
	Model         *TrainedModel  `json:"-"`
	Accuracy      float64        `json:"accuracy"`
	TrainAccuracy float64        `json:"train_accuracy"`
	TestFraction  float64        `json:"test_fraction"`
	Stratified    bool           `json:"stratified"`
	Warning       string         `json:"warning,omitempty"`
	TotalSamples  int            `json:"total_samples"`
	TrainSamples  int            `json:"train_samples"`
	TestSamples   int            `json:"test_samples"`
	ClassCounts   map[string]int `json:"class_counts"`
}

// Trainer fits a classifier from the gesture dataset and persists it.
// At most one training run executes at a time; a concurrent call is rejected
// with ErrTrainingInProgress rather than queued.
type Trainer struct {
	dataset *dataset.Dataset
	models  *ModelStore
	mu      sync.Mutex
}

// NewTrainer creates a Trainer over the given dataset and model store.
func NewTrainer(ds *dataset.Dataset, models *ModelStore) *Trainer {
	return &Trainer{dataset: ds, models: models}
}

// Train reads the full dataset, plans and performs the train/test split,
// fits a random forest, evaluates it and atomically persists the new model.
// Data sufficiency failures are returned as errors carrying the actual
// counts; no partial artifact is ever persisted on a failure path.
func (t *Trainer) Train() (*TrainingResult, error) {
	if !t.mu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer t.mu.Unlock()

	samples, err := t.dataset.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	counts := make(map[string]int)
	for _, s := range samples {
		counts[s.Label]++
	}

	plan, err := PlanSplit(len(samples), counts)
	if err != nil {
		return nil, err
	}

	classes := sortedLabels(counts)
	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	x := make([][]float64, len(samples))
	y := make([]int, len(samples))
	labels := make([]string, len(samples))
	for i, s := range samples {
		x[i] = s.Features
		y[i] = classIndex[s.Label]
		labels[i] = s.Label
	}

	split := plan.Partition(labels, Seed)

	// Balanced class weights: each class contributes to the loss inversely
	// to its frequency, countering small-dataset label imbalance.
	weights := make([]float64, len(classes))
	for i, c := range classes {
		weights[i] = float64(len(samples)) / (float64(len(classes)) * float64(counts[c]))
	}

	hp := ScaleHyperparams(len(samples))

	xTrain, yTrain := gather(x, y, split.TrainIdx)
	xTest, yTest := gather(x, y, split.TestIdx)

	rng := rand.New(rand.NewSource(Seed))
	forest := TrainForest(xTrain, yTrain, len(classes), hp, weights, rng)

	model := &TrainedModel{
		Forest:    forest,
		Classes:   classes,
		Params:    hp,
		TrainedOn: len(samples),
	}

	if err := t.models.Save(model); err != nil {
		return nil, fmt.Errorf("failed to persist model: %w", err)
	}

	result := &TrainingResult{
		Model:         model,
		Accuracy:      accuracy(forest, xTest, yTest),
		TrainAccuracy: accuracy(forest, xTrain, yTrain),
		TestFraction:  plan.TestFraction,
		Stratified:    split.Stratified,
		TotalSamples:  len(samples),
		TrainSamples:  len(split.TrainIdx),
		TestSamples:   len(split.TestIdx),
		ClassCounts:   counts,
	}
	if !split.Stratified {
		result.Warning = "stratified split infeasible for class distribution; used plain random split"
	}

	return result, nil
}

// Counts returns the current per-label sample counts and total. Used by the
// dataset info surface to report how far the dataset is from trainable.
func (t *Trainer) Counts() (map[string]int, int, error) {
	counts, err := t.dataset.LabelCounts()
	if err != nil {
		return nil, 0, err
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	return counts, total, nil
}

func gather(x [][]float64, y []int, indices []int) ([][]float64, []int) {
	gx := make([][]float64, len(indices))
	gy := make([]int, len(indices))
	for i, idx := range indices {
		gx[i] = x[idx]
		gy[i] = y[idx]
	}
	return gx, gy
}

// accuracy is the share of vectors the forest labels correctly.
func accuracy(f *Forest, x [][]float64, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	correct := 0
	for i, vec := range x {
		if f.Predict(vec) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x))
}
