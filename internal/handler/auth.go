package handler

import (
	"net/http"

	"frontofhouse/internal/service"
)

func LoginHandler(authSvc *service.AuthService, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		staff, err := authSvc.Authenticate(r.Context(), req.Login, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		issueToken(w, r, secret, staff.ID, http.StatusOK)
	}
}
