// Package tenancy scopes every request to one org (tenant). Handlers and
// repositories never trust ids from request bodies; the org comes from
// context, set once by the router middleware.
package tenancy

import (
	"context"
	"net/http"
)

type ctxKey string

const orgKey ctxKey = "salon.org_id"

// OrgHeader is the request header carrying the tenant id.
const OrgHeader = "X-Org-Id"

// WithOrgID stores the org id in context.
func WithOrgID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, orgKey, orgID)
}

// OrgIDFromContext extracts the org id if present.
func OrgIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(orgKey)
	if val == nil {
		return "", false
	}
	orgID, ok := val.(string)
	return orgID, ok && orgID != ""
}

// RequireOrg rejects requests without an org header and stores the org id in
// the request context for downstream handlers.
func RequireOrg(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID := r.Header.Get(OrgHeader)
		if orgID == "" {
			http.Error(w, `{"error": "`+OrgHeader+` header required"}`, http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithOrgID(r.Context(), orgID)))
	})
}
