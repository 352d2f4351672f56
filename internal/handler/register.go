package handler

import (
	"net/http"
	"strings"
	"time"

	"frontofhouse/internal/mw"
	"frontofhouse/internal/service"
)

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func RegisterHandler(authSvc *service.AuthService, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		req.Login = strings.TrimSpace(req.Login)
		if req.Login == "" || req.Password == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "login and password required"})
			return
		}

		staff, err := authSvc.Register(r.Context(), req.Login, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		issueToken(w, r, secret, staff.ID, http.StatusCreated)
	}
}

func issueToken(w http.ResponseWriter, r *http.Request, secret, staffID string, status int) {
	token, err := mw.IssueToken(secret, staffID, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	writeJSON(w, status, map[string]string{"token": token})
}
