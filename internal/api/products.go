package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// ProductsHandler handles product catalog endpoints.
type ProductsHandler struct {
	DB *sql.DB
}

type createProductRequest struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List handles GET /api/products.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := store.ListProducts(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list products", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	jsonResponse(w, http.StatusOK, products)
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.SKU = strings.TrimSpace(req.SKU)
	req.Name = strings.TrimSpace(req.Name)
	if req.SKU == "" || req.Name == "" {
		jsonError(w, http.StatusBadRequest, "sku and name required")
		return
	}

	product, err := store.CreateProduct(r.Context(), h.DB, req.SKU, req.Name, req.Description)
	if errors.Is(err, store.ErrDuplicateSKU) {
		jsonError(w, http.StatusConflict, "sku already exists")
		return
	}
	if err != nil {
		slog.Error("failed to create product", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	slog.Info("product created", "user", GetClaims(r.Context()).Username, "sku", product.SKU)
	jsonResponse(w, http.StatusCreated, product)
}

// Get handles GET /api/products/{id}.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := store.GetProduct(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get product", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	if product == nil {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}
	jsonResponse(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	product, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get product", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	if product == nil || product.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}

	if err := store.DeleteProduct(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to delete product", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	slog.Info("product deleted", "user", GetClaims(r.Context()).Username, "sku", product.SKU)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "product deleted"})
}
