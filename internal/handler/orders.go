package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"frontofhouse/internal/service"
)

type statusRequest struct {
	Prepared *bool `json:"prepared"`
	Served   *bool `json:"served"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type quickNoteRequest struct {
	Note string `json:"note"`
}

type extrasRequest struct {
	Extras []int `json:"extras"`
}

func documentID(r *http.Request) string {
	return chi.URLParam(r, "documentId")
}

func UpdateStatusHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Prepared == nil || req.Served == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "prepared and served required"})
			return
		}
		if err := floor.UpdateStatus(r.Context(), documentID(r), *req.Prepared, *req.Served); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UpdateQuantityHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quantityRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Quantity == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quantity required"})
			return
		}
		if err := floor.UpdateQuantity(r.Context(), documentID(r), *req.Quantity); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UpdateNotesHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notesRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := floor.UpdateNotes(r.Context(), documentID(r), req.Notes); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AppendQuickNoteHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quickNoteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		note := strings.TrimSpace(req.Note)
		if note == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "note required"})
			return
		}
		if err := floor.AppendQuickNote(r.Context(), documentID(r), note); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UpdateExtrasHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req extrasRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := floor.UpdateExtras(r.Context(), documentID(r), req.Extras); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func TogglePaidHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := floor.TogglePaid(r.Context(), documentID(r)); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func RemoveOrderHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := floor.RemoveOrder(r.Context(), documentID(r)); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
