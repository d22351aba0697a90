// Package common contains constants and sentinel errors shared by the
// FilmRate client packages.
package common

// Request metadata headers carrying the caller's identity. Their absence
// marks an anonymous request.
const (
	UserIDHeaderName    = "X-User-Id"
	UserRoleHeaderName  = "X-User-Role"
	RequestIDHeaderName = "X-Request-Id"
)

// SessionNamespace is the local storage key holding the serialized identity.
const SessionNamespace = "filmrate_user"
