package authx

import (
	"context"
	"net/http"

	"github.com/krancour/bizdesk/sdk/internal/restmachinery"
	"github.com/krancour/bizdesk/sdk/session"
)

// UsersClient is the specialized client for User identity.
type UsersClient interface {
	// GetCurrent retrieves the User associated with the current session from
	// the API server.
	GetCurrent(context.Context) (session.User, error)
}

type usersClient struct {
	*restmachinery.BaseClient
}

// NewUsersClient returns a specialized client for User identity.
func NewUsersClient(
	apiAddress string,
	sessions *session.Manager,
	opts *APIClientOptions,
) UsersClient {
	return &usersClient{
		BaseClient: newBaseClient(apiAddress, sessions, opts),
	}
}

func (u *usersClient) GetCurrent(ctx context.Context) (session.User, error) {
	user := session.User{}
	return user, u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        "v1/auth/me",
			SuccessCode: http.StatusOK,
			RespObj:     &user,
		},
	)
}
