package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"frontofhouse/internal/service"
)

func MenuHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menu, err := catalog.Menu(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, menu)
	}
}

func ListCatalogHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := service.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		items, err := catalog.List(r.Context(), kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func CreateCatalogHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := service.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		var rec service.Record
		if err := decodeJSON(r, &rec); err != nil {
			writeError(w, r, err)
			return
		}
		created, err := catalog.Create(r.Context(), kind, rec)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateCatalogHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := service.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		var rec service.Record
		if err := decodeJSON(r, &rec); err != nil {
			writeError(w, r, err)
			return
		}
		updated, err := catalog.Update(r.Context(), kind, documentID(r), rec)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteCatalogHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := service.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := catalog.Delete(r.Context(), kind, documentID(r)); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
