package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/types"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error types.ServiceError `json:"error"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: types.ServiceError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondCategorized maps any error onto the wire via its category. The
// internals of uncategorized errors never leak to clients.
func respondCategorized(w http.ResponseWriter, err error) {
	catErr := apperrors.Categorize(err)
	svcErr := catErr.ToServiceError()
	if catErr.Category == apperrors.CategorySystem {
		svcErr.Message = "An internal error occurred"
		svcErr.Details = nil
	}
	respondError(w, catErr.StatusCode, svcErr.Code, svcErr.Message, svcErr.Details)
}

// parseJSONBody parses a JSON request body.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
