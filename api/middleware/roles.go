package middleware

import (
	"net/http"

	"github.com/coexhq/coex-backend/api/responses"
	"github.com/coexhq/coex-backend/pkg/enums"
	pkgerrors "github.com/coexhq/coex-backend/pkg/errors"
	"github.com/coexhq/coex-backend/pkg/logger"
)

// RequireRoles rejects requests whose actor holds none of the listed
// roles. Admin is not implicit: gates that admit admins list them.
func RequireRoles(logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorRole := RoleFromContext(r.Context())
			for _, role := range roles {
				if actorRole == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "access denied, insufficient permissions"))
		})
	}
}

// RequirePharmacy admits pharmacies and admins.
func RequirePharmacy(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireRoles(logg, enums.RolePharmacy, enums.RoleAdmin)
}

// RequireDistributor admits distributors and admins.
func RequireDistributor(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireRoles(logg, enums.RoleDistributor, enums.RoleAdmin)
}

// RequireAdmin admits admins only.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireRoles(logg, enums.RoleAdmin)
}
