package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"diapredict/dataset"
	"diapredict/ml"
)

// trainedMux runs the whole pipeline: CSV on disk, load, select,
// train, save artifact, load artifact, serve. The dataset is
// separable on glucose (low readings negative, high positive) so the
// reference predictions are stable.
func trainedMux(t *testing.T) *http.ServeMux {
	t.Helper()

	var b strings.Builder
	b.WriteString("Pregnancies,Glucose,BloodPressure,BMI,Age,Outcome\n")
	for _, glucose := range []float64{90, 95, 100, 105, 110, 115, 120, 125} {
		fmt.Fprintf(&b, "3,%g,70,30,40,0\n", glucose)
	}
	for _, glucose := range []float64{140, 145, 148, 150, 152, 155, 158, 160} {
		fmt.Fprintf(&b, "3,%g,70,30,40,1\n", glucose)
	}

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "diabetes.csv")
	if err := os.WriteFile(csvPath, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := dataset.Load(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	features, labels, err := dataset.Select(table, ml.FeatureNames(), ml.TargetColumn)
	if err != nil {
		t.Fatal(err)
	}
	model, err := ml.NewTrainer(42, 0.2, 6).Fit(features, labels)
	if err != nil {
		t.Fatal(err)
	}

	artifactPath := filepath.Join(dir, "diabetes.model")
	if err := ml.SaveArtifact(model, artifactPath); err != nil {
		t.Fatal(err)
	}
	loaded, err := ml.LoadArtifact(artifactPath)
	if err != nil {
		t.Fatal(err)
	}

	handler, err := NewPredictHandler(loaded, zap.NewNop(), 16)
	if err != nil {
		t.Fatal(err)
	}
	mux := http.NewServeMux()
	handler.Register(mux)
	return mux
}

func postPredict(t *testing.T, mux *http.ServeMux, body string) (int, predictResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var payload predictResponse
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
	}
	return w.Code, payload
}

func TestPredictEndToEnd(t *testing.T) {
	mux := trainedMux(t)

	status, payload := postPredict(t, mux,
		`{"Pregnancies":2,"Glucose":120.0,"BloodPressure":70.0,"BMI":25.5,"Age":30}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if payload.Diabetic {
		t.Fatal("expected diabetic=false for glucose 120")
	}

	status, payload = postPredict(t, mux,
		`{"Pregnancies":6,"Glucose":148.0,"BloodPressure":72.0,"BMI":33.6,"Age":50}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !payload.Diabetic {
		t.Fatal("expected diabetic=true for glucose 148")
	}
}

func TestRootBeforeAnyPredict(t *testing.T) {
	mux := trainedMux(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	expected := `{"message":"Diabetes Prediction API is live"}`
	if strings.TrimSpace(w.Body.String()) != expected {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestPredictMissingAgeEndToEnd(t *testing.T) {
	mux := trainedMux(t)

	status, _ := postPredict(t, mux,
		`{"Pregnancies":2,"Glucose":120.0,"BloodPressure":70.0,"BMI":25.5}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestPredictConcurrent(t *testing.T) {
	mux := trainedMux(t)

	bodies := []string{
		`{"Pregnancies":2,"Glucose":120.0,"BloodPressure":70.0,"BMI":25.5,"Age":30}`,
		`{"Pregnancies":6,"Glucose":148.0,"BloodPressure":72.0,"BMI":33.6,"Age":50}`,
		`{"Pregnancies":1,"Glucose":95.0,"BloodPressure":60.0,"BMI":22.0,"Age":25}`,
		`{"Pregnancies":8,"Glucose":158.0,"BloodPressure":90.0,"BMI":38.0,"Age":55}`,
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		for _, body := range bodies {
			wg.Add(1)
			go func(body string) {
				defer wg.Done()
				req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				if w.Code != http.StatusOK {
					t.Errorf("expected 200, got %d", w.Code)
				}
			}(body)
		}
	}
	wg.Wait()
}
