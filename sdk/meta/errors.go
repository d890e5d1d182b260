package meta

import "fmt"

// ErrAuthentication represents an error wherein the API server could not
// authenticate the request, typically because the bearer token is missing,
// unknown or expired. Clients receiving this error have already had their
// local session discarded.
type ErrAuthentication struct {
	TypeMeta `json:",inline"`
	Reason   string `json:"reason"`
}

func (e *ErrAuthentication) Error() string {
	return fmt.Sprintf("Could not authenticate the request: %s", e.Reason)
}

// ErrAuthorization represents an error wherein the request was authenticated
// but the principal is not allowed to perform the requested operation.
type ErrAuthorization struct {
	TypeMeta `json:",inline"`
	Reason   string `json:"reason,omitempty"`
}

func (e *ErrAuthorization) Error() string {
	if e.Reason == "" {
		return "The request is not authorized."
	}
	return fmt.Sprintf("The request is not authorized: %s", e.Reason)
}

// ErrBadRequest represents an error wherein an invalid request has been
// rejected by the API server.
type ErrBadRequest struct {
	TypeMeta `json:",inline"`
	Reason   string   `json:"reason"`
	Details  []string `json:"details,omitempty"`
}

func (e *ErrBadRequest) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("Bad request: %s", e.Reason)
	}
	msg := fmt.Sprintf("Bad request: %s:", e.Reason)
	for i, detail := range e.Details {
		msg = fmt.Sprintf("%s\n  %d. %s", msg, i, detail)
	}
	return msg
}

// ErrNotFound represents an error wherein a resource presumed to exist could
// not be located.
type ErrNotFound struct {
	TypeMeta `json:",inline"`
	Type     string `json:"type"`
	ID       string `json:"id"`
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found.", e.Type, e.ID)
}

// ErrConflict represents an error wherein a request cannot be completed
// because it would violate some constraint of the system, for instance
// registering an email address that is already in use.
type ErrConflict struct {
	TypeMeta `json:",inline"`
	Type     string `json:"type"`
	ID       string `json:"id"`
	Reason   string `json:"reason"`
}

func (e *ErrConflict) Error() string {
	return e.Reason
}

// ErrInternalServer represents a condition wherein the API server has
// encountered an unexpected error and does not wish to communicate further
// details.
type ErrInternalServer struct {
	TypeMeta `json:",inline"`
}

func (e *ErrInternalServer) Error() string {
	return "An internal server error occurred."
}

// ErrNotSupported represents an error wherein a request cannot be completed
// because the API server does not support it.
type ErrNotSupported struct {
	TypeMeta `json:",inline"`
	Details  string `json:"reason"`
}

func (e *ErrNotSupported) Error() string {
	return e.Details
}

// ErrSessionRequired is returned by the client before any request is
// dispatched when the target endpoint requires authentication and no valid
// session exists. It never originates from the API server.
type ErrSessionRequired struct {
	Method string
	Path   string
}

func (e *ErrSessionRequired) Error() string {
	return fmt.Sprintf(
		"A valid session is required for %s %s; please log in.",
		e.Method,
		e.Path,
	)
}

// ErrAccessDenied is returned when switching to a tenant that is not among
// the tenants the current principal is known to have access to.
type ErrAccessDenied struct {
	TenantID string
}

func (e *ErrAccessDenied) Error() string {
	return fmt.Sprintf("Access to tenant %q is denied.", e.TenantID)
}
