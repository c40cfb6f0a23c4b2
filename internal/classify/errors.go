package classify

import (
	"errors"
	"fmt"
)

// ErrNoModel is returned when no trained model artifact has been persisted
// yet. Callers should treat it as "run training first", not as a failure.
var ErrNoModel = errors.New("no trained model; run training first")

// ErrTrainingInProgress is returned when a training run is already executing.
// The condition is retryable.
var ErrTrainingInProgress = errors.New("training already in progress")

// InsufficientClassesError reports that the dataset holds fewer than two
// gesture classes.
type InsufficientClassesError struct {
	Classes int
}

func (e *InsufficientClassesError) Error() string {
	return fmt.Sprintf("need at least 2 gesture classes to train, have %d", e.Classes)
}

// InsufficientClassSamplesError reports a gesture class with fewer than two
// recorded samples.
type InsufficientClassSamplesError struct {
	Label string
	Count int
}

func (e *InsufficientClassSamplesError) Error() string {
	return fmt.Sprintf("gesture %q has only %d sample(s); need at least 2 per gesture", e.Label, e.Count)
}

// InsufficientTotalSamplesError reports that the dataset is too small to
// reserve one held-out sample per class.
type InsufficientTotalSamplesError struct {
	Total    int
	Required int
}

func (e *InsufficientTotalSamplesError) Error() string {
	return fmt.Sprintf("need at least %d total samples to train, have %d", e.Required, e.Total)
}

// IsDataSufficiencyError reports whether err is one of the dataset
// sufficiency failures surfaced by the split planner.
func IsDataSufficiencyError(err error) bool {
	var classes *InsufficientClassesError
	var perClass *InsufficientClassSamplesError
	var total *InsufficientTotalSamplesError
	return errors.As(err, &classes) || errors.As(err, &perClass) || errors.As(err, &total)
}
