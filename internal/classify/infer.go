package classify

import (
	"errors"
	"sync/atomic"

	"github.com/ayusman/mudra/internal/feature"
)

// Prediction is the result of classifying one feature vector.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` // max class probability
	// Distribution maps every known class to its probability; sums to 1
	// within floating-point tolerance.
	Distribution map[string]float64 `json:"distribution"`
}

// Engine serves predictions from the currently-active trained model. The
// model is loaded lazily and held as an immutable snapshot; predictions are
// lock-free against the snapshot and a retrain swaps in a new one without
// blocking in-flight calls.
type Engine struct {
	store    *ModelStore
	snapshot atomic.Pointer[TrainedModel]
}

// NewEngine creates an inference engine over the given model store.
func NewEngine(store *ModelStore) *Engine {
	return &Engine{store: store}
}

// Predict classifies a feature vector against the active model. It returns
// ErrNoModel when no model has been trained yet.
func (e *Engine) Predict(vec feature.Vector) (*Prediction, error) {
	if len(vec) != feature.VectorSize {
		return nil, &feature.InvalidVectorLengthError{Got: len(vec)}
	}

	model, err := e.model()
	if err != nil {
		return nil, err
	}

	probs := model.Forest.Proba(vec)

	pred := &Prediction{
		Distribution: make(map[string]float64, len(model.Classes)),
	}
	for i, class := range model.Classes {
		pred.Distribution[class] = probs[i]
		if probs[i] > pred.Confidence {
			pred.Confidence = probs[i]
			pred.Label = class
		}
	}

	return pred, nil
}

// Model returns the active model snapshot, loading it lazily. It returns
// ErrNoModel when nothing has been persisted yet.
func (e *Engine) Model() (*TrainedModel, error) {
	return e.model()
}

// Reload replaces the active snapshot with the persisted artifact. Called
// after a successful retrain.
func (e *Engine) Reload() error {
	model, err := e.store.Load()
	if err != nil {
		return err
	}
	e.snapshot.Store(model)
	return nil
}

func (e *Engine) model() (*TrainedModel, error) {
	if m := e.snapshot.Load(); m != nil {
		return m, nil
	}

	m, err := e.store.Load()
	if err != nil {
		if errors.Is(err, ErrNoModel) {
			return nil, ErrNoModel
		}
		return nil, err
	}

	e.snapshot.Store(m)
	return m, nil
}
