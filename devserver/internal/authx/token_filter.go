package authx

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/krancour/bizdesk/devserver/internal/restmachinery"
	"github.com/krancour/bizdesk/sdk/meta"
	"github.com/pkg/errors"
)

const tenantHeader = "X-Tenant-ID"

type tokenAuthFilter struct {
	*restmachinery.BaseEndpoints
	service Service
	// tenantScoped filters also verify that the authenticated User belongs to
	// the tenant named by the X-Tenant-ID header, if present
	tenantScoped bool
}

// NewTokenAuthFilter returns a Filter that admits requests bearing a valid
// token.
func NewTokenAuthFilter(
	baseEndpoints *restmachinery.BaseEndpoints,
	service Service,
) restmachinery.Filter {
	return &tokenAuthFilter{
		BaseEndpoints: baseEndpoints,
		service:       service,
	}
}

// NewTenantScopedFilter returns a Filter that admits requests bearing a valid
// token whose X-Tenant-ID header, if present, names a tenant the
// authenticated User belongs to.
func NewTenantScopedFilter(
	baseEndpoints *restmachinery.BaseEndpoints,
	service Service,
) restmachinery.Filter {
	return &tokenAuthFilter{
		BaseEndpoints: baseEndpoints,
		service:       service,
		tenantScoped:  true,
	}
}

func (t *tokenAuthFilter) Decorate(handle http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		headerValue := r.Header.Get("Authorization")
		if headerValue == "" {
			t.WriteAPIResponse(
				w,
				http.StatusUnauthorized,
				&meta.ErrAuthentication{
					Reason: `"Authorization" header is missing.`,
				},
			)
			return
		}
		headerValueParts := strings.SplitN(headerValue, " ", 2)
		if len(headerValueParts) != 2 ||
			headerValueParts[0] != "Bearer" ||
			headerValueParts[1] == "" {
			t.WriteAPIResponse(
				w,
				http.StatusUnauthorized,
				&meta.ErrAuthentication{
					Reason: `"Authorization" header is malformed.`,
				},
			)
			return
		}

		user, err := t.service.Authenticate(r.Context(), headerValueParts[1])
		if err != nil {
			if authErr, ok := errors.Cause(err).(*meta.ErrAuthentication); ok {
				t.WriteAPIResponse(w, http.StatusUnauthorized, authErr)
				return
			}
			t.Logger.Error().Err(err).Msg("error authenticating request")
			t.WriteAPIResponse(
				w,
				http.StatusInternalServerError,
				&meta.ErrInternalServer{},
			)
			return
		}

		if tenantID := r.Header.Get(tenantHeader); t.tenantScoped && tenantID != "" {
			isMember, err := t.service.IsMember(r.Context(), user.ID, tenantID)
			if err != nil {
				t.Logger.Error().Err(err).Msg("error checking tenant membership")
				t.WriteAPIResponse(
					w,
					http.StatusInternalServerError,
					&meta.ErrInternalServer{},
				)
				return
			}
			if !isMember {
				t.WriteAPIResponse(
					w,
					http.StatusForbidden,
					&meta.ErrAuthorization{
						Reason: fmt.Sprintf("Access to tenant %q is denied.", tenantID),
					},
				)
				return
			}
		}

		handle(w, r.WithContext(ContextWithUser(r.Context(), user)))
	}
}
