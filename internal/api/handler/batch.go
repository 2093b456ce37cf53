package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bytefusion/loganalyzer/internal/api/response"
	"github.com/bytefusion/loganalyzer/internal/cache"
	"github.com/bytefusion/loganalyzer/internal/store"
	"github.com/bytefusion/loganalyzer/pkg/models"
)

const batchCacheTTL = 5 * time.Minute

// NewGetBatchHandler returns an http.HandlerFunc for GET /api/v1/batches/{batchID}.
// Batches are immutable, so cache hits are always valid.
func NewGetBatchHandler(st store.Store, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batchID, err := uuid.Parse(chi.URLParam(r, "batchID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "batchID must be a valid UUID", nil)
			return
		}

		key := cache.BatchKey(batchID)
		if cached, ok, err := ca.Get(r.Context(), key); err == nil && ok {
			var batch models.Batch
			if err := json.Unmarshal(cached, &batch); err == nil {
				response.JSON(w, &batch)
				return
			}
		}

		batch, err := st.GetBatch(r.Context(), batchID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Batch not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load batch", nil)
			return
		}

		if encoded, err := json.Marshal(batch); err == nil {
			_ = ca.Set(r.Context(), key, encoded, batchCacheTTL)
		}

		response.JSON(w, batch)
	}
}
