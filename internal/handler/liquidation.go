package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"frontofhouse/internal/model"
	"frontofhouse/internal/mw"
	"frontofhouse/internal/service"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type liquidateResponse struct {
	Liquidation *model.Liquidation `json:"liquidation"`
	Warning     string             `json:"warning,omitempty"`
}

func LiquidateHandler(liqSvc *service.LiquidationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, ok := mw.StaffID(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		liq, err := liqSvc.Liquidate(r.Context(), staffID)
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, liquidateResponse{Liquidation: liq})
		case errors.Is(err, service.ErrPartialLiquidation) && liq != nil:
			writeJSON(w, http.StatusCreated, liquidateResponse{Liquidation: liq, Warning: err.Error()})
		default:
			writeError(w, r, err)
		}
	}
}

func ListLiquidationsHandler(liqSvc *service.LiquidationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
				return
			}
			limit = min(n, maxHistoryLimit)
		}

		history, err := liqSvc.History(r.Context(), limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if len(history) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, history)
	}
}

func GetLiquidationHandler(liqSvc *service.LiquidationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		liq, err := liqSvc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, liq)
	}
}
