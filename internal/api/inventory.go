package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/zaloga/internal/inventory"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/stock"
	"github.com/erazemk/zaloga/internal/store"
)

// InventoryHandler handles inventory record endpoints.
type InventoryHandler struct {
	DB    *sql.DB
	Stock *stock.Service
}

type createInventoryRequest struct {
	ProductID       string `json:"product_id"`
	LocationID      string `json:"location_id"`
	InitialQuantity int    `json:"initial_quantity"`
}

type adjustRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type inventoryPage struct {
	Items  []inventory.Snapshot `json:"items"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.Stock.QueryInventory(r.Context(), f)
	if err != nil {
		stockError(w, err)
		return
	}

	f = f.Normalize()
	resp := inventoryPage{
		Items:  make([]inventory.Snapshot, 0, len(page.Records)),
		Total:  page.Total,
		Limit:  f.Limit,
		Offset: f.Offset,
	}
	for _, rec := range page.Records {
		resp.Items = append(resp.Items, rec.Snapshot())
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Create handles POST /api/inventory.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" || req.LocationID == "" {
		jsonError(w, http.StatusBadRequest, "product_id and location_id required")
		return
	}

	created, err := h.Stock.CreateInventory(r.Context(), req.ProductID, req.LocationID, req.InitialQuantity)
	if err != nil {
		stockError(w, err)
		return
	}

	slog.Info("inventory created", "user", GetClaims(r.Context()).Username,
		"inventory_id", created.ID, "quantity", created.Quantity)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/inventory/{id}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Stock.GetInventory(r.Context(), r.PathValue("id"))
	if err != nil {
		stockError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, rec.Snapshot())
}

// Events handles GET /api/inventory/{id}/events.
func (h *InventoryHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	limit, err := intParam(r.URL.Query(), "limit")
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	if _, err := h.Stock.GetInventory(r.Context(), id); err != nil {
		stockError(w, err)
		return
	}

	events, err := store.ListEvents(r.Context(), h.DB, id, n)
	if err != nil {
		slog.Error("failed to list events", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.StockEvent{}
	}
	jsonResponse(w, http.StatusOK, events)
}

// Adjust handles POST /api/inventory/{id}/adjust.
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Stock.AdjustStock(r.Context(), r.PathValue("id"), req.Delta, req.Reason)
	if err != nil {
		stockError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Reserve handles POST /api/inventory/{id}/reserve.
func (h *InventoryHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Stock.ReserveStock(r.Context(), r.PathValue("id"), req.Quantity)
	if err != nil {
		stockError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Release handles POST /api/inventory/{id}/release.
func (h *InventoryHandler) Release(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Stock.ReleaseReservation(r.Context(), r.PathValue("id"), req.Quantity)
	if err != nil {
		stockError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Commit handles POST /api/inventory/{id}/commit.
func (h *InventoryHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Stock.CommitReservation(r.Context(), r.PathValue("id"), req.Quantity)
	if err != nil {
		stockError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// parseFilter reads an inventory filter from query parameters.
func parseFilter(q url.Values) (inventory.Filter, error) {
	var f inventory.Filter
	var err error

	if v := q.Get("product_id"); v != "" {
		f.ProductID = &v
	}
	if v := q.Get("location_id"); v != "" {
		f.LocationID = &v
	}
	if f.HasStock, err = boolParam(q, "has_stock"); err != nil {
		return f, err
	}
	if f.HasReservation, err = boolParam(q, "has_reservation"); err != nil {
		return f, err
	}
	if f.MinQuantity, err = intParam(q, "min_quantity"); err != nil {
		return f, err
	}
	if f.MaxQuantity, err = intParam(q, "max_quantity"); err != nil {
		return f, err
	}

	f.SortBy = inventory.SortField(q.Get("sort"))
	switch q.Get("order") {
	case "", "asc":
	case "desc":
		f.Desc = true
	default:
		return f, fmt.Errorf("order must be 'asc' or 'desc'")
	}

	if limit, err := intParam(q, "limit"); err != nil {
		return f, err
	} else if limit != nil {
		f.Limit = *limit
	}
	if offset, err := intParam(q, "offset"); err != nil {
		return f, err
	} else if offset != nil {
		f.Offset = *offset
	}
	return f, nil
}

func boolParam(q url.Values, name string) (*bool, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &b, nil
}

func intParam(q url.Values, name string) (*int, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &n, nil
}
