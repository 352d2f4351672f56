package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"frontofhouse/internal/cms"
	"frontofhouse/internal/service"
)

const maxRequestBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

var (
	errInvalidJSON = errors.New("invalid json")
	errInvalidID   = errors.New("invalid id")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case status >= http.StatusInternalServerError && status != http.StatusBadGateway:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	case status == http.StatusBadGateway:
		slog.Error("backend request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidJSON), errors.Is(err, errInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrLiquidationNotFound),
		errors.Is(err, service.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidRecord),
		errors.Is(err, service.ErrExtraNotAvailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrTableInUse),
		errors.Is(err, service.ErrOrderReleased),
		errors.Is(err, service.ErrOrderPaid),
		errors.Is(err, service.ErrOrderLocked),
		errors.Is(err, service.ErrNotPrepared),
		errors.Is(err, service.ErrAlwaysPrepared),
		errors.Is(err, service.ErrNothingToRelease),
		errors.Is(err, service.ErrNothingToLiquidate),
		errors.Is(err, service.ErrLoginTaken):
		return http.StatusConflict
	}

	var apiErr *cms.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errInvalidJSON
	}
	return nil
}

func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n <= 0 {
		return 0, errInvalidID
	}
	return n, nil
}
