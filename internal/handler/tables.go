package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"frontofhouse/internal/service"
)

func OverviewHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tables, err := floor.Overview(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tables)
	}
}

func TableHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intParam(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		table, err := floor.Table(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, table)
	}
}

func TableByNumberHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := strconv.Atoi(chi.URLParam(r, "number"))
		if err != nil {
			writeError(w, r, errInvalidID)
			return
		}
		table, err := floor.TableByNumber(r.Context(), number)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, table)
	}
}

func AddTableHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table, err := floor.AddTable(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, table)
	}
}

func DeleteLastTableHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := floor.DeleteLastTable(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type addProductRequest struct {
	ProductID int `json:"productId"`
}

func AddProductHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID, err := intParam(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req addProductRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.ProductID <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "productId required"})
			return
		}

		order, err := floor.AddProduct(r.Context(), tableID, req.ProductID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	}
}

func ReleaseTableHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID, err := intParam(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := floor.ReleaseTable(r.Context(), tableID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func KitchenHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := floor.Kitchen(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

func ServiceHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := floor.Service(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

func ReleasedHandler(floor *service.FloorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := floor.Released(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
