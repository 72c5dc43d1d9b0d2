package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hdb_service/internal/core"
	"hdb_service/internal/domain/model"
)

// Handler exposes the prediction service over HTTP.
type Handler struct {
	service *core.PredictionService
	log     *zap.Logger
}

func NewHandler(service *core.PredictionService, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes builds the service router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Home)
	r.Get("/health", h.Health)
	r.Post("/predict", h.Predict)
	return r
}

// PredictRequest mirrors the public request contract. Required fields
// are pointers so a missing field is distinguishable from a zero value.
type PredictRequest struct {
	FlatType       *string  `json:"Flat_Type"`
	Storey         *int     `json:"Storey"`
	FloorArea      *float64 `json:"Floor_Area"`
	RemainingLease *float64 `json:"Remaining_Lease"`
	RPI            *float64 `json:"RPI"`
	Address        *string  `json:"Address"`
	Town           *string  `json:"Town"`
}

type PredictResponse struct {
	Price float64 `json:"price"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Predict handles POST /predict.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.FlatType == nil || req.Storey == nil || req.FloorArea == nil ||
		req.RemainingLease == nil || req.RPI == nil || req.Address == nil || req.Town == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing required fields"})
		return
	}

	input := model.PredictionInput{
		FlatType:       *req.FlatType,
		Storey:         *req.Storey,
		FloorArea:      *req.FloorArea,
		RemainingLease: *req.RemainingLease,
		RPI:            *req.RPI,
		Address:        *req.Address,
		Town:           *req.Town,
	}

	price, err := h.service.Predict(r.Context(), input)
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		h.log.Error("prediction failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{Price: price})
}

// Health handles GET /health. It must not touch any external service;
// the front end pings it on page load to warm the container.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Home serves a minimal landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	const page = `<html>
	<head><title>HDB Price Prediction API</title></head>
	<body>
		<h1>HDB Resale Price Prediction Service</h1>
		<p>POST flat attributes to <code>/predict</code> to receive a price estimate in SGD.</p>
	</body>
</html>`
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(page))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
