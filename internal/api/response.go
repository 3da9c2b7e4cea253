package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/inventory"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorResponse{Error: message})
}

// statusByCode maps inventory error codes to HTTP statuses.
var statusByCode = map[string]int{
	"INVENTORY_NOT_FOUND":               http.StatusNotFound,
	"PRODUCT_NOT_FOUND":                 http.StatusNotFound,
	"LOCATION_NOT_FOUND":                http.StatusNotFound,
	"ALREADY_EXISTS":                    http.StatusConflict,
	"CONCURRENCY_CONFLICT":              http.StatusConflict,
	"INVALID_QUANTITY":                  http.StatusBadRequest,
	"INVALID_RESERVATION_QUANTITY":      http.StatusBadRequest,
	"SAME_LOCATION":                     http.StatusBadRequest,
	"INSUFFICIENT_STOCK":                http.StatusUnprocessableEntity,
	"INSUFFICIENT_AVAILABLE_STOCK":      http.StatusUnprocessableEntity,
	"CANNOT_RELEASE_MORE_THAN_RESERVED": http.StatusUnprocessableEntity,
	"PRODUCT_MISMATCH":                  http.StatusUnprocessableEntity,
	"TRANSFER_COMPENSATED":              http.StatusServiceUnavailable,
}

// stockError writes err with its inventory error code. Errors without a
// business meaning are logged and reported as internal errors.
func stockError(w http.ResponseWriter, err error) {
	code := inventory.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		slog.Error("stock command failed", "code", code, "error", err)
		status = http.StatusInternalServerError
	}

	message := err.Error()
	if code == "INTERNAL" {
		message = "internal error"
	}
	jsonResponse(w, status, errorResponse{Error: message, Code: code})
}

var errEmptyBody = errors.New("empty request body")

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	if r.Body == http.NoBody {
		return errEmptyBody
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
