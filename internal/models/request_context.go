package models

// RequestContext identifies who is performing an operation.
// It is built once per request by the auth middleware and passed by value.
type RequestContext struct {
	UserID uint
	Role   Role
}

// GuestContext returns the context of an unauthenticated requester.
func GuestContext() RequestContext {
	return RequestContext{Role: RoleGuest}
}

// Authenticated reports whether the requester is a signed-in user.
func (rc RequestContext) Authenticated() bool {
	return rc.UserID != 0 && rc.Role != RoleGuest
}

// IsAdmin reports whether the requester is an administrator.
func (rc RequestContext) IsAdmin() bool {
	return rc.Authenticated() && rc.Role == RoleAdmin
}
