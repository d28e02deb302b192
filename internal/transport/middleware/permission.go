package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/frahmantamala/yardguard/internal/auth"
	"github.com/frahmantamala/yardguard/internal/authz"
	"github.com/frahmantamala/yardguard/pkg/logger"
)

// RequireCapability guards a route group with a record-less evaluation: the
// request only passes when the caller holds at least one capability allowing
// the module/action pair. Handlers behind it still run record-aware checks
// where a record exists.
func RequireCapability(engine *authz.Engine, module authz.Module, action authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				writeDenied(w, http.StatusUnauthorized, "authentication required")
				return
			}

			accessCtx := auth.AccessContextFromContext(r.Context())
			decision, err := engine.Evaluate(user.Capabilities, module, action, user.Subject(), accessCtx, nil)
			if err != nil {
				if errors.Is(err, authz.ErrNoCapabilitySet) {
					logger.From(r.Context()).Error("capability set unavailable",
						"user_id", user.ID,
						"module", module,
						"action", action)
					writeDenied(w, http.StatusInternalServerError, "internal server error")
					return
				}
				writeDenied(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if !decision.Allowed {
				message := "access denied"
				if decision.Rejection != nil && decision.Rejection.Message != "" {
					message = decision.Rejection.Message
				}
				writeDenied(w, http.StatusForbidden, message)
				return
			}

			ctx := logger.With(r.Context(), "user_id", user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeDenied(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
