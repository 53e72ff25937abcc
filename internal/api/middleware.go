package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/terra-clan/unicorn-emporium/internal/models"
	"github.com/terra-clan/unicorn-emporium/internal/storage"
)

const lastUsedTimeout = 5 * time.Second

// authFailure is a rejected back-office request
type authFailure struct {
	status  int
	code    string
	message string
}

var (
	errMissingKey  = &authFailure{http.StatusUnauthorized, "missing_api_key", "provide an Authorization bearer token or an X-API-Key header"}
	errInvalidKey  = &authFailure{http.StatusUnauthorized, "invalid_api_key", "the provided api key is not valid"}
	errInactiveKey = &authFailure{http.StatusUnauthorized, "client_inactive", "this api key has been deactivated"}
	errAuthBackend = &authFailure{http.StatusInternalServerError, "authentication_error", "internal server error"}
	errNoClient    = &authFailure{http.StatusUnauthorized, "not_authenticated", "authentication required"}
)

func (f *authFailure) write(w http.ResponseWriter) {
	respondError(w, f.status, f.code, f.message)
}

// AuthMiddleware guards the back-office routes: product creation, order
// listing and the order feed. Storefront routes stay public.
type AuthMiddleware struct {
	repo storage.Repository
}

// NewAuthMiddleware creates the middleware over the api_clients store
func NewAuthMiddleware(repo storage.Repository) *AuthMiddleware {
	return &AuthMiddleware{repo: repo}
}

// Authenticate resolves the caller's API key to an active client and puts it
// in the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client, failure := m.resolve(r)
		if failure != nil {
			failure.write(w)
			return
		}

		go m.touch(client)

		slog.Debug("authenticated request", "client", client.Name, "key_prefix", client.MaskedApiKey())
		next.ServeHTTP(w, r.WithContext(ContextWithClient(r.Context(), client)))
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) (*models.ApiClient, *authFailure) {
	key := apiKeyFromRequest(r)
	if key == "" {
		return nil, errMissingKey
	}

	client, err := m.repo.GetClientByApiKey(r.Context(), key)
	switch {
	case err != nil:
		slog.Error("failed to lookup api client", "error", err, "key_prefix", models.MaskKey(key))
		return nil, errAuthBackend
	case client == nil:
		slog.Warn("invalid api key attempt", "key_prefix", models.MaskKey(key), "remote_addr", r.RemoteAddr)
		return nil, errInvalidKey
	case !client.IsActive:
		slog.Warn("inactive client attempt", "client", client.Name, "key_prefix", models.MaskKey(key))
		return nil, errInactiveKey
	}
	return client, nil
}

// touch records last use. Failures are logged only.
func (m *AuthMiddleware) touch(client *models.ApiClient) {
	ctx, cancel := context.WithTimeout(context.Background(), lastUsedTimeout)
	defer cancel()

	if err := m.repo.UpdateClientLastUsed(ctx, client.ApiKey); err != nil {
		slog.Error("failed to update client last_used_at", "error", err, "client", client.Name)
	}
}

// RequirePermission rejects clients lacking permission. It must run after
// Authenticate.
func (m *AuthMiddleware) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := ClientFromContext(r.Context())
			if client == nil {
				errNoClient.write(w)
				return
			}

			if !client.HasPermission(permission) {
				slog.Warn("permission denied", "client", client.Name, "required", permission, "has", client.Permissions)
				respondError(w, http.StatusForbidden, "permission_denied",
					"client does not have required permission: "+permission)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// apiKeyFromRequest reads "Authorization: Bearer <key>", a bare key in
// Authorization, or X-API-Key, in that order
func apiKeyFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.Header.Get("X-API-Key")
}
