package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// Error kinds reported in the "kind" field of an error body, so remote
// clients can rebuild typed errors.
const (
	KindValidation   = "validation"
	KindParse        = "parse"
	KindNotFound     = "not_found"
	KindInvalidField = "invalid_field"
	KindBadImage     = "bad_image"
	KindBadQuery     = "bad_query"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error    string   `json:"error"`
	Kind     string   `json:"kind,omitempty"`
	Problems []string `json:"problems,omitempty"`
	Key      string   `json:"key,omitempty"`
	Value    string   `json:"value,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, ErrorBody{Error: message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// writeItemError maps errors from the filter, store and imaging packages to
// a status code. Anything unrecognized is logged and reported as fallback.
func writeItemError(w http.ResponseWriter, err error, fallback string) {
	var (
		perr *filter.ParseError
		verr *model.ValidationError
	)
	switch {
	case errors.As(err, &perr):
		jsonResponse(w, http.StatusBadRequest, ErrorBody{
			Error: perr.Error(), Kind: KindParse, Key: perr.Key, Value: perr.Value,
		})
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, ErrorBody{
			Error: verr.Error(), Kind: KindValidation, Problems: verr.Problems,
		})
	case errors.Is(err, filter.ErrUnknownField), errors.Is(err, filter.ErrReadOnlyField),
		errors.Is(err, store.ErrInvalidFilter):
		jsonResponse(w, http.StatusBadRequest, ErrorBody{Error: err.Error(), Kind: KindInvalidField})
	case errors.Is(err, filter.ErrInvalidQuery):
		jsonResponse(w, http.StatusBadRequest, ErrorBody{Error: err.Error(), Kind: KindBadQuery})
	case errors.Is(err, store.ErrNotFound):
		jsonResponse(w, http.StatusNotFound, ErrorBody{Error: "item not found", Kind: KindNotFound})
	case errors.Is(err, imaging.ErrTooLarge):
		jsonResponse(w, http.StatusRequestEntityTooLarge, ErrorBody{Error: err.Error(), Kind: KindBadImage})
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		jsonResponse(w, http.StatusBadRequest, ErrorBody{Error: err.Error(), Kind: KindBadImage})
	default:
		slog.Error(fallback, "error", err)
		jsonError(w, http.StatusInternalServerError, fallback)
	}
}
