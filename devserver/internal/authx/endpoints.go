package authx

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/krancour/bizdesk/devserver/internal/restmachinery"
	"github.com/krancour/bizdesk/sdk/meta"
	"github.com/xeipuuv/gojsonschema"
)

const credentialsSchema = `{
	"type": "object",
	"required": ["email", "password"],
	"properties": {
		"email": {"type": "string", "minLength": 1},
		"password": {"type": "string", "minLength": 1}
	}
}`

const registrationSchema = `{
	"type": "object",
	"required": ["name", "email", "password"],
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 100},
		"email": {"type": "string", "format": "email"},
		"password": {"type": "string", "minLength": 8}
	}
}`

type endpoints struct {
	*restmachinery.BaseEndpoints
	tokenAuthFilter          restmachinery.Filter
	tenantScopedFilter       restmachinery.Filter
	credentialsSchemaLoader  gojsonschema.JSONLoader
	registrationSchemaLoader gojsonschema.JSONLoader
	service                  Service
}

// NewEndpoints returns the REST endpoints for authentication and tenant
// discovery.
func NewEndpoints(
	baseEndpoints *restmachinery.BaseEndpoints,
	service Service,
) restmachinery.Endpoints {
	return &endpoints{
		BaseEndpoints:            baseEndpoints,
		tokenAuthFilter:          NewTokenAuthFilter(baseEndpoints, service),
		tenantScopedFilter:       NewTenantScopedFilter(baseEndpoints, service),
		credentialsSchemaLoader:  gojsonschema.NewStringLoader(credentialsSchema),
		registrationSchemaLoader: gojsonschema.NewStringLoader(registrationSchema),
		service:                  service,
	}
}

func (e *endpoints) Register(router *mux.Router) {
	// Log in
	router.HandleFunc(
		"/v1/auth/login",
		e.login, // No filters applied to this request
	).Methods(http.MethodPost)

	// Register
	router.HandleFunc(
		"/v1/auth/register",
		e.register, // No filters applied to this request
	).Methods(http.MethodPost)

	// Current user
	router.HandleFunc(
		"/v1/auth/me",
		e.tenantScopedFilter.Decorate(e.me),
	).Methods(http.MethodGet)

	// Tenants of the current user; not scoped to any one tenant
	router.HandleFunc(
		"/v1/tenants/user",
		e.tokenAuthFilter.Decorate(e.tenants),
	).Methods(http.MethodGet)
}

func (e *endpoints) login(w http.ResponseWriter, r *http.Request) {
	credentials := Credentials{}
	e.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: e.credentialsSchemaLoader,
			ReqBodyObj:          &credentials,
			EndpointLogic: func() (interface{}, error) {
				return e.service.Login(r.Context(), credentials)
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (e *endpoints) register(w http.ResponseWriter, r *http.Request) {
	registration := Registration{}
	e.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: e.registrationSchemaLoader,
			ReqBodyObj:          &registration,
			EndpointLogic: func() (interface{}, error) {
				return e.service.Register(r.Context(), registration)
			},
			SuccessCode: http.StatusCreated,
		},
	)
}

func (e *endpoints) me(w http.ResponseWriter, r *http.Request) {
	e.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				user, ok := UserFromContext(r.Context())
				if !ok {
					return nil, &meta.ErrAuthentication{}
				}
				return user, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (e *endpoints) tenants(w http.ResponseWriter, r *http.Request) {
	e.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				user, ok := UserFromContext(r.Context())
				if !ok {
					return nil, &meta.ErrAuthentication{}
				}
				return e.service.ListTenants(r.Context(), user.ID)
			},
			SuccessCode: http.StatusOK,
		},
	)
}
