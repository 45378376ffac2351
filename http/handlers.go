package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"claimcharge/claims"
)

// PredictService is what the handlers need from the inference adapter.
type PredictService interface {
	Predict(vector claims.FeatureVector) (float64, error)
	Schema() []string
}

type ModelInfo struct {
	Type     string   `json:"type"`
	Features []string `json:"features"`
	Trees    int      `json:"trees"`
}

type API struct {
	predictor PredictService
	assessor  *claims.Assessor
	info      ModelInfo
	logger    *zap.Logger
}

func NewAPI(predictor PredictService, assessor *claims.Assessor, info ModelInfo, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{predictor: predictor, assessor: assessor, info: info, logger: logger}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("GET /api/model", a.handleModel)
	mux.HandleFunc("POST /api/predict", a.handlePredict)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, a.logger, map[string]string{"status": "ok"})
}

func (a *API) handleModel(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, a.logger, a.info)
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	var input claims.ClaimInput
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vector, err := input.Features()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	charge, err := a.predictor.Predict(vector)
	if err != nil {
		if errors.Is(err, claims.ErrInputMismatch) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.logger.Error("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	respondJSON(w, a.logger, a.assessor.Assess(charge))
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
