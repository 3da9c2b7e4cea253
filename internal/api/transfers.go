package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/stock"
	"github.com/erazemk/zaloga/internal/store"
)

// TransfersHandler handles transfer endpoints.
type TransfersHandler struct {
	DB    *sql.DB
	Stock *stock.Service
}

type createTransferRequest struct {
	FromInventoryID string `json:"from_inventory_id"`
	ToInventoryID   string `json:"to_inventory_id"`
	Quantity        int    `json:"quantity"`
	Reason          string `json:"reason"`
}

// Create handles POST /api/transfers.
func (h *TransfersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FromInventoryID == "" || req.ToInventoryID == "" {
		jsonError(w, http.StatusBadRequest, "from_inventory_id and to_inventory_id required")
		return
	}

	res, err := h.Stock.TransferStock(r.Context(), req.FromInventoryID, req.ToInventoryID, req.Quantity, req.Reason)
	if err != nil {
		stockError(w, err)
		return
	}

	slog.Info("transfer created", "user", GetClaims(r.Context()).Username,
		"transfer_id", res.TransferID, "quantity", req.Quantity)
	jsonResponse(w, http.StatusCreated, res)
}

// List handles GET /api/transfers.
func (h *TransfersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	transfers, err := store.ListTransfers(r.Context(), h.DB, q.Get("product_id"), q.Get("location_id"))
	if err != nil {
		slog.Error("failed to list transfers", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list transfers")
		return
	}
	if transfers == nil {
		transfers = []model.Transfer{}
	}
	jsonResponse(w, http.StatusOK, transfers)
}

// Get handles GET /api/transfers/{id}.
func (h *TransfersHandler) Get(w http.ResponseWriter, r *http.Request) {
	transfer, err := store.GetTransfer(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get transfer", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get transfer")
		return
	}
	if transfer == nil {
		jsonError(w, http.StatusNotFound, "transfer not found")
		return
	}
	jsonResponse(w, http.StatusOK, transfer)
}
