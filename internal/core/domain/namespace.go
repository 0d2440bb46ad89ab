package domain

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")

// Namespace is the per-application, per-user partition every supplier
// document lives under. It is produced once by the session bootstrap.
type Namespace struct {
	AppID  string
	UserID string
}

// Ready reports whether sign-in has produced a user to scope operations to.
func (n Namespace) Ready() bool {
	return n.AppID != "" && n.UserID != ""
}

// CollectionPath returns "{appId}/users/{userId}/suppliers".
func (n Namespace) CollectionPath() string {
	return n.AppID + "/users/" + n.UserID + "/suppliers"
}

// DocumentPath returns the address of a single supplier document.
func (n Namespace) DocumentPath(identifier string) string {
	return n.CollectionPath() + "/" + identifier
}
