package mw

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const StaffCtxKey contextKey = "staff_id"

const TokenTTL = 24 * time.Hour

type staffClaims struct {
	StaffID string `json:"staff_id"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token carrying the staff id, valid for TokenTTL
// from now.
func IssueToken(secret, staffID string, now time.Time) (string, error) {
	claims := staffClaims{
		StaffID: staffID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func StaffID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(StaffCtxKey).(string)
	return id, ok && id != ""
}

func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			var claims staffClaims
			token, err := jwt.ParseWithClaims(raw, &claims, keyFunc,
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithExpirationRequired(),
			)
			if err != nil || !token.Valid {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			if claims.StaffID == "" {
				http.Error(w, "staff_id not found in token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), StaffCtxKey, claims.StaffID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}
