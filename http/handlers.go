package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"diapredict/ml"
)

// liveMessage is the fixed liveness acknowledgment on GET /.
const liveMessage = "Diabetes Prediction API is live"

// PredictHandler answers prediction requests against one loaded
// model. The model is immutable after load, so concurrent requests
// share it without locking; the cache is internally synchronized.
type PredictHandler struct {
	model  ml.Classifier
	logger *zap.Logger
	cache  *lru.Cache[string, bool]
}

// NewPredictHandler wires the loaded model into a handler with a
// bounded prediction cache. Caching is sound because the model is
// deterministic and never reloaded.
func NewPredictHandler(model ml.Classifier, logger *zap.Logger, cacheSize int) (*PredictHandler, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[string, bool](cacheSize)
	if err != nil {
		return nil, err
	}
	return &PredictHandler{model: model, logger: logger, cache: cache}, nil
}

// Register mounts the routes.
func (h *PredictHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("POST /predict", h.handlePredict)
}

func (h *PredictHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": liveMessage})
}

func (h *PredictHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type predictResponse struct {
	Diabetic bool `json:"diabetic"`
}

func (h *PredictHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable request body"})
		return
	}

	sample, verr := parsePredictRequest(body)
	if verr != nil {
		h.logger.Debug("rejected predict request", zap.Int("violations", len(verr.Fields)))
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
		return
	}

	vector := ml.FeatureVector(sample)
	key := cacheKey(vector)
	if diabetic, ok := h.cache.Get(key); ok {
		writeJSON(w, http.StatusOK, predictResponse{Diabetic: diabetic})
		return
	}

	label, confidence, err := h.model.Predict(vector)
	if err != nil {
		h.logger.Error("prediction failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "prediction failed"})
		return
	}

	diabetic := label == 1
	h.cache.Add(key, diabetic)
	h.logger.Debug("prediction served",
		zap.Bool("diabetic", diabetic),
		zap.Float64("confidence", confidence),
	)
	writeJSON(w, http.StatusOK, predictResponse{Diabetic: diabetic})
}

func cacheKey(vector []float64) string {
	var b strings.Builder
	for i, v := range vector {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
