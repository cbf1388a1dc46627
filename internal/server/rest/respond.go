// Package rest exposes the server's HTTP surface: a chi router mapping
// the REST API onto the services, plus the middleware stack (request
// logging, panic recovery, bearer auth, rate limiting).
package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charstorm/toposphere/internal/common"
)

// listEnvelope is the paginated wrapper returned by collection endpoints.
type listEnvelope struct {
	Count   int `json:"count"`
	Results any `json:"results"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// renderError maps service errors onto the API's status codes. Ownership
// misses arrive as ErrorNotFound and stay 404: a 403 would confirm that
// another user's resource exists.
func (s *RESTServer) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ve.Fields)
	case errors.Is(err, common.ErrorNotFound):
		writeDetail(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		writeDetail(w, http.StatusUnauthorized, "authentication failed")
	default:
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody parses a JSON request body into dst. Malformed JSON is a
// client error, reported with a detail message.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
