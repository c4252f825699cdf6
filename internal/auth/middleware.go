package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type claimsKey struct{}

// ErrModelNotFound is returned by a ModelDirectory for unknown models
var ErrModelNotFound = errors.New("model not found")

// OwnedModel is a topic model as listed on the owner's profile
type OwnedModel struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	NumGroups int       `json:"num_groups"`
}

// ModelDirectory answers ownership questions about stored topic models
type ModelDirectory interface {
	OwnerOf(ctx context.Context, modelID uuid.UUID) (uuid.UUID, error)
	ModelsOf(ctx context.Context, userID uuid.UUID) ([]OwnedModel, error)
}

// Middleware rejects requests without a valid bearer token and stores the
// token claims on the request context.
func Middleware(service Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := service.ValidateToken(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

// RequireModelOwner lets a request through only when the model named by the
// given URL parameter belongs to the authenticated user. Models owned by
// someone else are reported as missing. Must run after Middleware.
func RequireModelOwner(models ModelDirectory, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			modelID, err := uuid.Parse(chi.URLParam(r, param))
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid model id")
				return
			}

			owner, err := models.OwnerOf(r.Context(), modelID)
			switch {
			case errors.Is(err, ErrModelNotFound):
				respondError(w, http.StatusNotFound, "model not found")
				return
			case err != nil:
				log.Printf("owner of model %s: %v", modelID, err)
				respondError(w, http.StatusInternalServerError, "failed to fetch model")
				return
			case owner != userID:
				respondError(w, http.StatusNotFound, "model not found")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the claims stored by Middleware
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user's ID
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
