package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/dataset"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/feature"
	"github.com/ayusman/mudra/internal/store"
)

// newTestPipeline builds a pipeline over temp-dir storage and a mock detector.
func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()

	dir := t.TempDir()

	registry, err := store.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	t.Cleanup(func() { registry.Close() })

	ds, err := dataset.Open(filepath.Join(dir, "samples.csv"))
	if err != nil {
		t.Fatalf("failed to open dataset: %v", err)
	}

	models := classify.NewModelStore(filepath.Join(dir, "model.gob"))

	return &Pipeline{
		Registry: registry,
		Dataset:  ds,
		Codec:    feature.NewCodec(),
		Detector: detector.NewMockDetector(),
		Trainer:  classify.NewTrainer(ds, models),
		Engine:   classify.NewEngine(models),
	}
}

// postJSON performs a JSON POST against the handler and returns the recorder.
func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// jitteredObservation shifts a fixture observation so recorded samples are
// not byte-identical.
func jitteredObservation(base detector.HandObservation, offset float64) *detector.HandObservation {
	obs := base
	obs.Landmarks = append([]detector.Landmark(nil), base.Landmarks...)
	for i := range obs.Landmarks {
		obs.Landmarks[i].X += offset
	}
	return &obs
}

// recordSamples records n jittered samples of each fixture gesture.
func recordSamples(t *testing.T, p *Pipeline, n int) {
	t.Helper()

	h := NewSamplesHandler(p)
	for i := 0; i < n; i++ {
		for label, fixture := range map[string]detector.HandObservation{
			"fist": detector.FistObservation(),
			"open": detector.OpenPalmObservation(),
		} {
			rec := postJSON(t, h, "/api/samples", recordSampleRequest{
				Label: label,
				ObservationRequest: ObservationRequest{
					Observation: jitteredObservation(fixture, float64(i)*0.001),
				},
			})
			if rec.Code != http.StatusCreated {
				t.Fatalf("record %s sample %d: status %d: %s", label, i, rec.Code, rec.Body)
			}
		}
	}
}

func TestSamplesHandler_RecordsSample(t *testing.T) {
	p := newTestPipeline(t)

	obs := detector.FistObservation()
	rec := postJSON(t, NewSamplesHandler(p), "/api/samples", recordSampleRequest{
		Label:              "  fist ",
		ObservationRequest: ObservationRequest{Observation: &obs},
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var resp recordSampleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Label != "fist" {
		t.Errorf("label = %q, want fist", resp.Label)
	}
	if resp.Samples != 1 {
		t.Errorf("samples = %d, want 1", resp.Samples)
	}

	counts, err := p.Dataset.LabelCounts()
	if err != nil {
		t.Fatalf("LabelCounts() error = %v", err)
	}
	if counts["fist"] != 1 {
		t.Errorf("dataset counts = %v, want fist:1", counts)
	}

	// Registry catalog tracks the label too
	g, err := p.Registry.Gestures().GetByName("fist")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if g.Samples != 1 {
		t.Errorf("registry samples = %d, want 1", g.Samples)
	}
}

func TestSamplesHandler_EmptyLabel(t *testing.T) {
	p := newTestPipeline(t)

	obs := detector.FistObservation()
	rec := postJSON(t, NewSamplesHandler(p), "/api/samples", recordSampleRequest{
		Label:              "   ",
		ObservationRequest: ObservationRequest{Observation: &obs},
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSamplesHandler_WrongLandmarkCount(t *testing.T) {
	p := newTestPipeline(t)

	obs := detector.FistObservation()
	obs.Landmarks = obs.Landmarks[:19]
	rec := postJSON(t, NewSamplesHandler(p), "/api/samples", recordSampleRequest{
		Label:              "fist",
		ObservationRequest: ObservationRequest{Observation: &obs},
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTrainHandler_InsufficientData(t *testing.T) {
	p := newTestPipeline(t)

	obs := detector.FistObservation()
	postJSON(t, NewSamplesHandler(p), "/api/samples", recordSampleRequest{
		Label:              "fist",
		ObservationRequest: ObservationRequest{Observation: &obs},
	})

	rec := postJSON(t, NewTrainHandler(p), "/api/train", struct{}{})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected an error message with the actual counts")
	}
}

func TestTrainHandler_TrainsAndReloads(t *testing.T) {
	p := newTestPipeline(t)
	recordSamples(t, p, 5)

	rec := postJSON(t, NewTrainHandler(p), "/api/train", struct{}{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var result classify.TrainingResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if result.TotalSamples != 10 {
		t.Errorf("total samples = %d, want 10", result.TotalSamples)
	}
	if result.Accuracy < 0 || result.Accuracy > 1 {
		t.Errorf("accuracy %v out of [0,1]", result.Accuracy)
	}

	// The engine now serves the freshly trained model
	if _, err := p.Engine.Model(); err != nil {
		t.Errorf("engine has no model after training: %v", err)
	}
}

func TestPredictHandler_NoTrainedModel(t *testing.T) {
	p := newTestPipeline(t)

	obs := detector.FistObservation()
	rec := postJSON(t, NewPredictHandler(p), "/api/predict",
		ObservationRequest{Observation: &obs})

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503: %s", rec.Code, rec.Body)
	}
}

func TestPredictHandler_Predicts(t *testing.T) {
	p := newTestPipeline(t)
	recordSamples(t, p, 5)

	if rec := postJSON(t, NewTrainHandler(p), "/api/train", struct{}{}); rec.Code != http.StatusOK {
		t.Fatalf("train status = %d: %s", rec.Code, rec.Body)
	}

	obs := detector.FistObservation()
	rec := postJSON(t, NewPredictHandler(p), "/api/predict",
		ObservationRequest{Observation: &obs})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var pred classify.Prediction
	if err := json.Unmarshal(rec.Body.Bytes(), &pred); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if pred.Label != "fist" {
		t.Errorf("predicted %q, want fist", pred.Label)
	}
	if pred.Confidence <= 0 || pred.Confidence > 1 {
		t.Errorf("confidence %v out of (0,1]", pred.Confidence)
	}
	if len(pred.Distribution) != 2 {
		t.Errorf("expected 2 classes in distribution, got %v", pred.Distribution)
	}
}

func TestDatasetHandler_Info(t *testing.T) {
	p := newTestPipeline(t)
	h := NewDatasetHandler(p)

	// Empty dataset is not trainable
	req := httptest.NewRequest(http.MethodGet, "/api/dataset", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info datasetInfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if info.Trainable {
		t.Error("empty dataset should not be trainable")
	}
	if info.Reason == "" {
		t.Error("expected a reason for untrainable dataset")
	}

	recordSamples(t, p, 3)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if !info.Trainable {
		t.Errorf("dataset should be trainable: %s", info.Reason)
	}
	if info.TotalSamples != 6 || info.Classes != 2 {
		t.Errorf("total=%d classes=%d, want 6/2", info.TotalSamples, info.Classes)
	}
	if info.LabelCounts["fist"] != 3 || info.LabelCounts["open"] != 3 {
		t.Errorf("unexpected label counts: %v", info.LabelCounts)
	}
}

func TestModelInfoHandler(t *testing.T) {
	p := newTestPipeline(t)
	h := NewModelInfoHandler(p)

	req := httptest.NewRequest(http.MethodGet, "/api/model-info", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info modelInfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if info.Loaded {
		t.Error("no model should be loaded yet")
	}

	recordSamples(t, p, 5)
	if rec := postJSON(t, NewTrainHandler(p), "/api/train", struct{}{}); rec.Code != http.StatusOK {
		t.Fatalf("train status = %d: %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if !info.Loaded {
		t.Fatal("model should be loaded after training")
	}
	if len(info.Classes) != 2 {
		t.Errorf("classes = %v, want 2 entries", info.Classes)
	}
	if info.TrainedOn != 10 {
		t.Errorf("trained_on = %d, want 10", info.TrainedOn)
	}
	if info.Hyperparameters == nil || info.Hyperparameters.TreeCount < 10 {
		t.Errorf("unexpected hyperparameters: %+v", info.Hyperparameters)
	}
}

func TestDetectHandler_MissingImage(t *testing.T) {
	p := newTestPipeline(t)

	rec := postJSON(t, NewDetectHandler(p), "/api/detect", detectRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGestureHandler_Registry(t *testing.T) {
	p := newTestPipeline(t)
	recordSamples(t, p, 2)

	h := NewGestureHandler(p.Registry)

	req := httptest.NewRequest(http.MethodGet, "/api/gestures", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp listGesturesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Gestures) != 2 {
		t.Fatalf("expected 2 gestures, got %d", len(resp.Gestures))
	}

	// Unknown gesture IDs map to 404
	req = httptest.NewRequest(http.MethodGet, "/api/gestures/missing", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
